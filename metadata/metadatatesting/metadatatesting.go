// Package metadatatesting swaps metadata getters for canned values in tests.
package metadatatesting

import (
	"context"

	"go.jonnrb.io/natmon/metadata"
)

type Stubbed struct {
	g *metadata.Getter
	p metadata.Getter
}

type Stub []Stubbed

func Install(g *metadata.Getter, v string) Stubbed {
	s := Stubbed{g, *g}
	*g = func(context.Context) (string, error) {
		return v, nil
	}
	return s
}

func InstallError(g *metadata.Getter, err error) Stubbed {
	s := Stubbed{g, *g}
	*g = func(context.Context) (string, error) {
		return "", err
	}
	return s
}

// Installs a getter that returns the values of vs in order, then repeats the
// last one.
func InstallSequence(g *metadata.Getter, vs ...Value) Stubbed {
	s := Stubbed{g, *g}
	i := 0
	*g = func(context.Context) (string, error) {
		v := vs[i]
		if i < len(vs)-1 {
			i++
		}
		return v.V, v.Err
	}
	return s
}

type Value struct {
	V   string
	Err error
}

func (s Stub) Uninstall() {
	for _, sd := range s {
		*sd.g = sd.p
	}
}
