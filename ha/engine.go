package ha

import (
	"context"
	"sort"
	"time"

	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/log"
	"go.jonnrb.io/natmon/probe"
	"go.jonnrb.io/natmon/route"
)

var logger = log.WithPrefix("ha: ")

// Decides what a non-master node should do given which of its peers didn't
// answer a full probe round.
//
// A node that can reach none of its peers assumes it is the one that's been
// cut off and does nothing. This keeps a partitioned node from stealing the
// route. A master outside the membership is never in unreachable and so is
// treated as reachable.
func Decide(local, master cluster.NodeID, peers cluster.Membership, unreachable []cluster.NodeID) Outcome {
	if master == local {
		return AlreadyMaster
	}
	switch {
	case len(unreachable) == 0:
		return NoOp
	case len(unreachable) == len(peers):
		return UnreachableSelf
	}
	for _, id := range unreachable {
		if id == master {
			return Failover
		}
	}
	return MasterReachable
}

type Registry interface {
	LocalNodeID(ctx context.Context) (cluster.NodeID, error)
	PeerSet(ctx context.Context) (cluster.Membership, error)
}

// Runs one heartbeat against the route table. Nothing is kept between ticks.
type Engine struct {
	RouteTableID string
	Registry     Registry
	Oracle       route.Oracle
	Prober       probe.Prober
	ProbeOptions probe.Options
}

// Errors are always *TickError.
func (e *Engine) Tick(ctx context.Context) (res Result, err error) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()

	res.Local, err = e.Registry.LocalNodeID(ctx)
	if err != nil {
		return res, &TickError{KindIdentity, err}
	}

	res.Master, err = e.Oracle.CurrentMaster(ctx, e.RouteTableID)
	if err != nil {
		return res, &TickError{KindRouteRead, err}
	}
	if res.Master == res.Local {
		res.Outcome = AlreadyMaster
		return res, nil
	}

	res.Peers, err = e.Registry.PeerSet(ctx)
	if err != nil {
		return res, &TickError{KindIdentity, err}
	}

	report := probe.Round(ctx, e.Prober, res.Peers, e.ProbeOptions)
	for id, err := range report.HarnessErrs() {
		logger.Warningf("could not probe %s; counting it as unreachable: %v", id, err)
	}
	res.Unreachable = report.Unreachable()
	sort.Slice(res.Unreachable, func(i, j int) bool {
		return res.Unreachable[i] < res.Unreachable[j]
	})
	log.V(2).Infof("ha: master %s; unreachable peers: %v", res.Master, res.Unreachable)

	res.Outcome = Decide(res.Local, res.Master, res.Peers, res.Unreachable)
	if res.Outcome != Failover {
		return res, nil
	}

	logger.Infof("Stealing route %s on route table %s", route.DefaultCIDR, e.RouteTableID)
	if err := e.Oracle.ReplaceMaster(ctx, e.RouteTableID, res.Local); err != nil {
		return res, &TickError{KindRouteWrite, err}
	}
	return res, nil
}
