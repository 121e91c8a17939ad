package config

import (
	"context"
	"fmt"

	"go.jonnrb.io/natmon/cluster"
)

// Configuration the daemon refuses to start with. Code is the process exit
// status.
type StartupError struct {
	Code int
	Msg  string
}

func (e *StartupError) Error() string {
	return e.Msg
}

const (
	ExitNoRouteTable  = 1
	ExitRouteNotFound = 2
	ExitTooFewNodes   = 3
)

type RouteTableChecker interface {
	RouteTableExists(ctx context.Context, routeTableID string) (bool, error)
}

// Checks c in a fixed order, stopping at the first problem. The problems with
// an exit code of their own are returned as a *StartupError.
func (c *Config) Validate(ctx context.Context, rt RouteTableChecker) error {
	if c.RouteTableID == "" {
		return &StartupError{ExitNoRouteTable, "route_table_id not specified"}
	}

	ok, err := rt.RouteTableExists(ctx, c.RouteTableID)
	switch {
	case err != nil:
		return fmt.Errorf("config: could not look up route table %q: %w", c.RouteTableID, err)
	case !ok:
		return &StartupError{ExitRouteNotFound, fmt.Sprintf("Route %s not found", c.RouteTableID)}
	}

	if len(c.Nodes) < cluster.QuorumFloor {
		return &StartupError{
			ExitTooFewNodes,
			fmt.Sprintf("%d or more nodes are required to create a quorum", cluster.QuorumFloor),
		}
	}

	// A probe with no timeout never gives up on a silent peer.
	switch {
	case c.Pings < 1:
		return fmt.Errorf("config: pings must be at least 1; got %d", c.Pings)
	case c.PingTimeout <= 0:
		return fmt.Errorf("config: ping_timeout must be positive; got %v", c.PingTimeout)
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("config: heartbeat_interval must be positive; got %v", c.HeartbeatInterval)
	}
	return nil
}
