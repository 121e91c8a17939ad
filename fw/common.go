package fw

import (
	"fmt"

	"go.jonnrb.io/natmon/fw/rules"
)

// Allows traffic to be forwarded from in to out on chain. An empty in matches
// any link. Note that this doesn't affect the routing rules at all.
func Forward(chain string, in, out Link) rules.Rule {
	if in == "" {
		return rules.Rule(fmt.Sprintf(
			"-t filter -A %s -j ACCEPT -o %v", chain, out.Name()))
	}
	return rules.Rule(fmt.Sprintf(
		"-t filter -A %s -j ACCEPT -i %v -o %v", chain, in.Name(), out.Name()))
}

// Masquerades traffic forwarded to out.
func Masquerade(out Link) rules.Rule {
	return rules.Rule(fmt.Sprintf(
		"-t nat -A POSTROUTING -j MASQUERADE -o %v",
		out.Name()))
}

// Allows either tcp or udp input traffic to a specific port. Only meaningful
// on top of rules.BaseRules.
func OpenPort(proto, port string) rules.Rule {
	switch proto {
	case "tcp":
	case "udp":
	default:
		panic(fmt.Sprintf("invalid proto: %q", proto))
	}

	return rules.Rule(fmt.Sprintf(
		"-t filter -I in-%s -j ACCEPT -p %s --dport %s",
		proto, proto, port))
}
