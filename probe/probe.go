package probe // import "go.jonnrb.io/natmon/probe"

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.jonnrb.io/natmon/cluster"
	"golang.org/x/sync/errgroup"
)

// Returned by a Prober when the peer simply didn't answer. Any other error
// means the probe itself couldn't be carried out.
var ErrNoReply = errors.New("probe: no reply")

type Options struct {
	// How long to wait for each echo.
	Timeout time.Duration

	// How many echoes to send. One reply is enough.
	Count int
}

// Stands in for a non-positive Options.Timeout.
const DefaultTimeout = time.Second

// o with a non-positive Timeout replaced by DefaultTimeout and a Count of at
// least 1.
func (o Options) Normalized() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Count < 1 {
		o.Count = 1
	}
	return o
}

// Upper bound on how long a probe with these options may take. Always
// positive.
func (o Options) Budget() time.Duration {
	o = o.Normalized()
	return o.Timeout * time.Duration(o.Count)
}

type Prober interface {
	// Returns nil iff addr replied within opts.Budget().
	Probe(ctx context.Context, addr string, opts Options) error
}

type Func func(ctx context.Context, addr string, opts Options) error

func (f Func) Probe(ctx context.Context, addr string, opts Options) error {
	return f(ctx, addr, opts)
}

// Outcome of probing every peer once. A peer is unreachable if its probe
// returned any error.
type Report struct {
	Errs map[cluster.NodeID]error
}

func (r Report) Reachable(id cluster.NodeID) bool {
	return r.Errs[id] == nil
}

func (r Report) Unreachable() []cluster.NodeID {
	var ids []cluster.NodeID
	for id, err := range r.Errs {
		if err != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Errors that weren't plain non-replies. These still count as unreachable,
// but they usually point at local misconfiguration.
func (r Report) HarnessErrs() map[cluster.NodeID]error {
	m := make(map[cluster.NodeID]error)
	for id, err := range r.Errs {
		if err != nil && !errors.Is(err, ErrNoReply) {
			m[id] = err
		}
	}
	return m
}

// Probes every peer concurrently and returns once every probe has finished.
func Round(ctx context.Context, p Prober, peers cluster.Membership, opts Options) Report {
	var (
		mu   sync.Mutex
		errs = make(map[cluster.NodeID]error, len(peers))
	)

	var eg errgroup.Group
	for _, n := range peers {
		n := n
		eg.Go(func() error {
			err := probeWithBudget(ctx, p, n.Addr, opts)
			mu.Lock()
			defer mu.Unlock()
			errs[n.ID] = err
			return nil
		})
	}
	eg.Wait()

	return Report{Errs: errs}
}

func probeWithBudget(ctx context.Context, p Prober, addr string, opts Options) (err error) {
	// A little slack so the prober's own timeout fires first.
	b := opts.Budget()
	ctx, cancel := context.WithTimeout(ctx, b+b/2)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = &panicError{r}
		}
	}()
	return p.Probe(ctx, addr, opts.Normalized())
}

type panicError struct {
	v interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("probe: prober panicked: %v", e.v)
}
