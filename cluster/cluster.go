package cluster // import "go.jonnrb.io/natmon/cluster"

import (
	"context"
	"fmt"
	"sync"

	"go.jonnrb.io/natmon/log"
)

// Identifies a cluster member. On EC2 this is the instance id.
type NodeID string

// A member of the cluster and the address it answers probes on.
type Node struct {
	ID   NodeID
	Addr string
}

// Ordered set of cluster members. Order is the order they were configured in.
type Membership []Node

// Minimum number of configured nodes before failover is allowed to run.
const QuorumFloor = 3

func (m Membership) Contains(id NodeID) bool {
	_, ok := m.Addr(id)
	return ok
}

func (m Membership) Addr(id NodeID) (string, bool) {
	for _, n := range m {
		if n.ID == id {
			return n.Addr, true
		}
	}
	return "", false
}

// Returns m minus the node with id.
func (m Membership) Without(id NodeID) Membership {
	r := make(Membership, 0, len(m))
	for _, n := range m {
		if n.ID != id {
			r = append(r, n)
		}
	}
	return r
}

func (m Membership) IDs() []NodeID {
	ids := make([]NodeID, len(m))
	for i, n := range m {
		ids[i] = n.ID
	}
	return ids
}

// Looks up the id of the node this process runs on.
type IdentityFunc func(ctx context.Context) (NodeID, error)

// Static membership plus the lazily resolved local identity. Only a successful
// identity lookup is memoized; a failed one is retried on the next call.
type Registry struct {
	members  Membership
	identity IdentityFunc

	mu    sync.Mutex
	local NodeID
	peers Membership
}

func NewRegistry(members Membership, identity IdentityFunc) *Registry {
	return &Registry{
		members:  append(Membership(nil), members...),
		identity: identity,
	}
}

func (r *Registry) Membership() Membership {
	return r.members
}

func (r *Registry) LocalNodeID(ctx context.Context) (NodeID, error) {
	if err := r.resolve(ctx); err != nil {
		return "", err
	}
	return r.local, nil
}

// Membership minus the local node.
func (r *Registry) PeerSet(ctx context.Context) (Membership, error) {
	if err := r.resolve(ctx); err != nil {
		return nil, err
	}
	return r.peers, nil
}

func (r *Registry) resolve(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.local != "" {
		return nil
	}

	id, err := r.identity(ctx)
	if err != nil {
		return fmt.Errorf("cluster: could not look up local node id: %w", err)
	}
	if id == "" {
		return fmt.Errorf("cluster: local node id lookup returned an empty id")
	}

	if !r.members.Contains(id) {
		log.Warningf(
			"cluster: local node %q is not in the configured membership %v; "+
				"treating every configured node as a peer", id, r.members.IDs())
	}
	r.local, r.peers = id, r.members.Without(id)
	log.V(1).Infof("cluster: local node is %q; peers: %v", id, r.peers.IDs())
	return nil
}
