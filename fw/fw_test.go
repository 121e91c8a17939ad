package fw

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.jonnrb.io/natmon/fw/rules"
)

func TestRules_Permissive(t *testing.T) {
	rs := Rules(Config{Uplink: "eth0"})

	expected := rules.RuleSet{
		"-t filter -A FORWARD -j ACCEPT -o eth0",
		"-t nat -A POSTROUTING -j MASQUERADE -o eth0",
	}
	if diff := cmp.Diff(expected, rs); diff != "" {
		t.Errorf("unexpected rules (-want +got):\n%s", diff)
	}
}

func TestRules_Lockdown(t *testing.T) {
	rs := Rules(Config{
		Uplink:     "eth0",
		LAN:        "eth1",
		Lockdown:   true,
		OpenPorts:  []Port{{"tcp", "8080"}},
		ExtraRules: rules.RuleSet{"-t filter -A fw-open -j ACCEPT -p tcp --dport 22"},
	})

	idx := func(r rules.Rule) int {
		for i, x := range rs {
			if x == r {
				return i
			}
		}
		t.Fatalf("missing rule %q in %q", r, rs)
		return -1
	}

	policy := idx("-t filter -P INPUT DROP")
	open := idx("-t filter -I in-tcp -j ACCEPT -p tcp --dport 8080")
	fwd := idx("-t filter -A fw-interfaces -j ACCEPT -i eth1 -o eth0")
	masq := idx("-t nat -A POSTROUTING -j MASQUERADE -o eth0")
	extra := idx("-t filter -A fw-open -j ACCEPT -p tcp --dport 22")
	reject := idx("-t filter -A in-tcp -j REJECT -p tcp --reject-with tcp-reset")

	if !(policy < open && open < fwd && fwd < masq && masq < extra && extra < reject) {
		t.Errorf("rules out of order: %q", rs)
	}
}

func TestApply(t *testing.T) {
	defer func(old func([]string) error) { runIptables = old }(runIptables)

	var got [][]string
	runIptables = func(args []string) error {
		got = append(got, args)
		return nil
	}

	if err := Apply(Config{Uplink: "eth0"}); err != nil {
		t.Fatalf("expected err == nil; got err == %v", err)
	}

	expected := [][]string{
		{"-t", "filter", "-A", "FORWARD", "-j", "ACCEPT", "-o", "eth0"},
		{"-t", "nat", "-A", "POSTROUTING", "-j", "MASQUERADE", "-o", "eth0"},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected iptables calls (-want +got):\n%s", diff)
	}
}

func TestApply_StopsOnFailure(t *testing.T) {
	defer func(old func([]string) error) { runIptables = old }(runIptables)

	n := 0
	bad := errors.New("iptables: no chain/target/match by that name")
	runIptables = func(args []string) error {
		n++
		return bad
	}

	if err := Apply(Config{Uplink: "eth0"}); err != bad {
		t.Errorf("expected err == bad; got err == %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 iptables call; got %d", n)
	}
}

func TestEnableForwarding(t *testing.T) {
	defer func(old string) { ipForwardPath = old }(ipForwardPath)
	ipForwardPath = filepath.Join(t.TempDir(), "ip_forward")

	if err := EnableForwarding(); err != nil {
		t.Fatalf("expected err == nil; got err == %v", err)
	}
	b, err := os.ReadFile(ipForwardPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1\n" {
		t.Errorf("expected %q; got %q", "1\n", b)
	}
}

func TestOpenPort_BadProto(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	OpenPort("sctp", "22")
}
