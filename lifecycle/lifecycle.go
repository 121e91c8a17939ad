// Package lifecycle composes the daemon's parts: Wrappers are set up before
// and torn down after the Actives, which run concurrently.
package lifecycle // import "go.jonnrb.io/natmon/lifecycle"

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type Wrapper interface {
	Start() error
	Stop() error
}

type Active interface {
	Run(ctx context.Context) error
}

type WrapperStruct struct {
	StartFunc func() error
	StopFunc  func() error
}

func (s WrapperStruct) Start() error {
	if s.StartFunc == nil {
		return nil
	}
	return s.StartFunc()
}

func (s WrapperStruct) Stop() error {
	if s.StopFunc == nil {
		return nil
	}
	return s.StopFunc()
}

type ActiveFunc func(ctx context.Context) error

func (f ActiveFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type Suite struct {
	Wrappers []Wrapper
	Actives  []Active
}

// Starts every Wrapper in order, runs the Actives until one fails or they all
// return, then stops the started Wrappers in reverse order. The first error
// wins.
func (s Suite) Run(ctx context.Context) (err error) {
	w, a := Split(s)

	if err = w.Start(); err != nil {
		return
	}
	defer func() {
		errStop := w.Stop()
		if err == nil {
			err = errStop
		}
	}()

	err = a.Run(ctx)
	return
}

func Join(s ...Suite) Suite {
	var r Suite
	for _, c := range s {
		r.Wrappers = append(r.Wrappers, c.Wrappers...)
		r.Actives = append(r.Actives, c.Actives...)
	}
	return r
}

// Splits a Suite into a Wrapper that starts and stops all of the constituent
// wrappers in order and an Active that concurrently runs all of the constituent
// actives.
func Split(s Suite) (*CombinedWrappers, CombinedActives) {
	return &CombinedWrappers{Wrappers: s.Wrappers}, CombinedActives(s.Actives)
}

type CombinedWrappers struct {
	Wrappers []Wrapper

	started []Wrapper
	errs    []error
}

// If a Wrapper fails to start, the ones before it are stopped.
func (s *CombinedWrappers) Start() error {
	s.started = s.started[:0]
	for _, w := range s.Wrappers {
		if err := w.Start(); err != nil {
			s.errs = append(s.errs, err)
			s.Stop()
			return s.err()
		}
		s.started = append(s.started, w)
	}
	return nil
}

func (s *CombinedWrappers) Stop() error {
	for i := len(s.started) - 1; i >= 0; i-- {
		if err := s.started[i].Stop(); err != nil {
			s.errs = append(s.errs, err)
		}
	}
	s.started = nil
	return s.err()
}

func (s *CombinedWrappers) err() error {
	return errors.Join(s.errs...)
}

type CombinedActives []Active

// The first Active to fail cancels the rest.
func (s CombinedActives) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for i := range s {
		a := s[i]
		eg.Go(func() error {
			return a.Run(ctx)
		})
	}
	return eg.Wait()
}
