// Package ha decides, once per heartbeat, whether this node should take over
// the default route from a master that stopped answering.
package ha // import "go.jonnrb.io/natmon/ha"

import (
	"fmt"
	"time"

	"go.jonnrb.io/natmon/cluster"
)

// What a tick decided.
type Outcome int

const (
	// Some peer was unreachable but nothing needed doing, or nothing was
	// unreachable at all.
	NoOp Outcome = iota

	// The route already points here. Peers weren't probed.
	AlreadyMaster

	// Every peer was unreachable, so this node is probably the one cut off.
	UnreachableSelf

	// Some peers were unreachable but the master answered.
	MasterReachable

	// The master was unreachable and this node took the route.
	Failover
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "no-op"
	case AlreadyMaster:
		return "already-master"
	case UnreachableSelf:
		return "unreachable-self"
	case MasterReachable:
		return "master-reachable"
	case Failover:
		return "failover"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// True if the route points at this node once the tick is done.
func (o Outcome) IsMaster() bool {
	return o == AlreadyMaster || o == Failover
}

// Filled in as far as the tick got, even when it failed.
type Result struct {
	Outcome Outcome

	Local  cluster.NodeID
	Master cluster.NodeID

	Peers       cluster.Membership
	Unreachable []cluster.NodeID

	Duration time.Duration
}

type ErrorKind int

const (
	// The local node id couldn't be looked up.
	KindIdentity ErrorKind = iota + 1

	// The current master couldn't be read.
	KindRouteRead

	// The route couldn't be replaced.
	KindRouteWrite

	// The tick panicked.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindRouteRead:
		return "route-read"
	case KindRouteWrite:
		return "route-write"
	case KindPanic:
		return "panic"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// A failed tick. The scheduler retries the whole tick after the next interval.
type TickError struct {
	Kind ErrorKind
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("ha: %s failure: %v", e.Kind, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
