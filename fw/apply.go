// Package fw turns a host into a NAT gateway: it brings the uplink up, lets
// the kernel forward and masquerades forwarded traffic with iptables.
package fw // import "go.jonnrb.io/natmon/fw"

import (
	"go.jonnrb.io/natmon/fw/rules"
	"go.jonnrb.io/natmon/lifecycle"
)

// The iptables rules for cfg, in the order they're applied.
func Rules(cfg Config) rules.RuleSet {
	b := rules.NewBuilder()

	chain := "FORWARD"
	if cfg.Lockdown {
		b.Apply(rules.BaseRules)
		chain = rules.InterfacesChain

		var open rules.RuleSet
		for _, p := range cfg.OpenPorts {
			open = append(open, OpenPort(p.Proto, p.Port))
		}
		b.Add(40, open)
	}

	return b.
		Add(50, rules.RuleSet{
			Forward(chain, cfg.LAN, cfg.Uplink),
			Masquerade(cfg.Uplink),
		}).
		Add(60, cfg.ExtraRules).
		Build()
}

func Apply(cfg Config) error {
	return applyRuleSet(Rules(cfg))
}

// Everything needed to NAT through cfg.Uplink, set up in order.
func Suite(cfg Config) lifecycle.Suite {
	return lifecycle.Suite{
		Wrappers: []lifecycle.Wrapper{
			&Up{Link: cfg.Uplink},
			lifecycle.WrapperStruct{StartFunc: EnableForwarding},
			lifecycle.WrapperStruct{StartFunc: func() error {
				return Apply(cfg)
			}},
		},
	}
}
