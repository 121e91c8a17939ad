package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type recorder struct {
	mu sync.Mutex
	a  []string
}

func (r *recorder) record(a string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.a = append(r.a, a)
}

func (r *recorder) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return strings.Join(r.a, " ")
}

func failIf(b bool, name string) error {
	if b {
		return errors.New("fail" + name)
	}
	return nil
}

func wrapper(r *recorder, name string, failStart, failStop bool) Wrapper {
	return WrapperStruct{
		StartFunc: func() error {
			r.record("start" + name)
			return failIf(failStart, name)
		},
		StopFunc: func() error {
			r.record("stop" + name)
			return failIf(failStop, name)
		},
	}
}

// Waits for the other active so the recorded order is fixed.
func actives(r *recorder, failA1, failA2 bool) []Active {
	ran := make(chan struct{})
	return []Active{
		ActiveFunc(func(ctx context.Context) error {
			r.record("runA1")
			close(ran)
			return failIf(failA1, "A1")
		}),
		ActiveFunc(func(ctx context.Context) error {
			<-ran
			r.record("runA2")
			return failIf(failA2, "A2")
		}),
	}
}

func TestSuite(t *testing.T) {
	const full = "startW1 startW2 runA1 runA2 stopW2 stopW1"

	for _, c := range []struct {
		name             string
		w1Start, w2Start bool
		w1Stop, w2Stop   bool
		a1, a2           bool
		expectedErr      string
		expectedActions  string
	}{
		{name: "ok", expectedActions: full},
		{name: "early start failure", w1Start: true, expectedErr: "failW1", expectedActions: "startW1"},
		{name: "late start failure", w2Start: true, expectedErr: "failW2", expectedActions: "startW1 startW2 stopW1"},
		{name: "early stop failure", w1Stop: true, expectedErr: "failW1", expectedActions: full},
		{name: "late stop failure", w2Stop: true, expectedErr: "failW2", expectedActions: full},
		{name: "both stops fail", w1Stop: true, w2Stop: true, expectedErr: "failW2\nfailW1", expectedActions: full},
		{name: "active failure", a1: true, expectedErr: "failA1", expectedActions: full},
		{name: "active failure beats stop failure", a2: true, w1Stop: true, expectedErr: "failA2", expectedActions: full},
	} {
		t.Run(c.name, func(t *testing.T) {
			var r recorder
			s := Suite{
				Wrappers: []Wrapper{
					wrapper(&r, "W1", c.w1Start, c.w1Stop),
					wrapper(&r, "W2", c.w2Start, c.w2Stop),
				},
				Actives: actives(&r, c.a1, c.a2),
			}

			err := s.Run(context.Background())

			switch {
			case c.expectedErr == "" && err != nil:
				t.Errorf("expected err == nil; got err == %v", err)
			case c.expectedErr != "" && (err == nil || err.Error() != c.expectedErr):
				t.Errorf("expected err == %q; got err == %v", c.expectedErr, err)
			}
			if a := r.get(); a != c.expectedActions {
				t.Errorf("expected actions %q; got %q", c.expectedActions, a)
			}
		})
	}
}

func TestCombinedActives_FailureCancelsOthers(t *testing.T) {
	a := CombinedActives{
		ActiveFunc(func(ctx context.Context) error {
			return errors.New("something bad")
		}),
		ActiveFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	}

	if err := a.Run(context.Background()); err == nil || err.Error() != "something bad" {
		t.Errorf("expected err == errors.New(\"something bad\"); got err == %v", err)
	}
}

func TestJoin(t *testing.T) {
	var r recorder
	s := Join(
		Suite{Wrappers: []Wrapper{wrapper(&r, "W1", false, false)}},
		Suite{Wrappers: []Wrapper{wrapper(&r, "W2", false, false)}},
	)

	if err := s.Run(context.Background()); err != nil {
		t.Errorf("expected err == nil; got err == %v", err)
	}
	if a := r.get(); a != "startW1 startW2 stopW2 stopW1" {
		t.Errorf("got bad action sequence: %v", a)
	}
}
