package fw

import (
	"flag"
	"fmt"
	"os/exec"

	"github.com/google/shlex"
	"go.jonnrb.io/natmon/fw/rules"
	"go.jonnrb.io/natmon/log"
)

var iptablesBin = flag.String("iptables.bin", "/sbin/iptables", "Path to iptables binary")

// Swapped out in tests.
var runIptables = func(args []string) error {
	out, err := exec.Command(*iptablesBin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("fw: %v %q: %w: %s", *iptablesBin, args, err, out)
	}
	return nil
}

func applyRuleSet(rs rules.RuleSet) error {
	for _, r := range rs {
		log.V(3).Infof("Applying rule %q", r)
		args, err := shlex.Split(string(r))
		if err != nil {
			return fmt.Errorf("fw: bad rule %q: %w", r, err)
		}
		if err := runIptables(args); err != nil {
			return err
		}
	}
	return nil
}
