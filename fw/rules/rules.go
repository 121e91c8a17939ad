package rules // import "go.jonnrb.io/natmon/fw/rules"

import "sort"

// A rule, probably of the iptables variety, although nothing about the value is
// assumed in this package.
type Rule string

// A set of rules to be applied in order.
type RuleSet []Rule

// Maps priorities to the rules at those priorities. Lower numbers are applied
// first. Rules at the same priority keep the order they were added in.
type RuleSetBuilder map[int][]Rule

func NewBuilder() RuleSetBuilder {
	return RuleSetBuilder(make(map[int][]Rule))
}

func (b RuleSetBuilder) Add(priority int, rules RuleSet) RuleSetBuilder {
	b[priority] = append(b[priority], rules...)
	return b
}

func (b RuleSetBuilder) Apply(mutate func(b RuleSetBuilder)) RuleSetBuilder {
	mutate(b)
	return b
}

func (b RuleSetBuilder) Build() RuleSet {
	var ks []int
	for k := range b {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	var rs []Rule
	for _, k := range ks {
		rs = append(rs, b[k]...)
	}
	return rs
}
