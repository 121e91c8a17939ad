package fw

import "go.jonnrb.io/natmon/fw/rules"

type Config struct {
	// Link that outbound traffic leaves on and is masqueraded behind. On a
	// single-homed NAT instance this is also where the traffic arrives.
	Uplink Link

	// Link with the clients being NATed. If empty, forwarding out Uplink is
	// allowed from any link.
	LAN Link

	// Replaces the permissive default policy with rules.BaseRules. OpenPorts
	// are let through.
	Lockdown  bool
	OpenPorts []Port

	ExtraRules rules.RuleSet
}

// A connected network interface.
type Link string

func (l Link) Name() string {
	return string(l)
}

type Port struct {
	Proto string
	Port  string
}
