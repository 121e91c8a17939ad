package route // import "go.jonnrb.io/natmon/route"

import (
	"context"
	"errors"

	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/log"
)

// Destination of the route whose target is the master.
const DefaultCIDR = "0.0.0.0/0"

// The route table has no DefaultCIDR route, or it doesn't point at a node.
// This is a configuration problem and won't fix itself.
var ErrNoDefaultRoute = errors.New("route: no " + DefaultCIDR + " route to a node")

// The routing system that decides which node carries the default route. Reads
// and writes aren't transactional: two nodes can both read a dead master and
// both replace it, and the last write wins.
type Oracle interface {
	// Only used to validate configuration at startup.
	RouteTableExists(ctx context.Context, routeTableID string) (bool, error)

	// The node the DefaultCIDR route currently targets.
	CurrentMaster(ctx context.Context, routeTableID string) (cluster.NodeID, error)

	// Points the DefaultCIDR route at node.
	ReplaceMaster(ctx context.Context, routeTableID string, node cluster.NodeID) error
}

// Passes reads through to Oracle but only logs writes.
type DryRun struct {
	Oracle
}

func (d DryRun) ReplaceMaster(ctx context.Context, routeTableID string, node cluster.NodeID) error {
	log.Warningf(
		"route: mocking enabled; would have pointed %s on route table %s at %s",
		DefaultCIDR, routeTableID, node)
	return nil
}
