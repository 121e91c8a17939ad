// Package etcdroute keeps the master pointer in etcd for routing systems that
// are programmed from there instead of from a cloud API. A route table
// "exists" once its key has been seeded.
package etcdroute // import "go.jonnrb.io/natmon/route/etcdroute"

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.etcd.io/etcd/client/v3"
	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/route"
)

const DefaultPrefix = "/natmon"

// The subset of clientv3.KV used here.
type KV interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
}

type Oracle struct {
	KV     KV
	Prefix string
}

type Params struct {
	Endpoints   []string
	Prefix      string
	DialTimeout time.Duration
}

// The returned client should be closed once the Oracle is no longer used.
func New(params Params) (*Oracle, *clientv3.Client, error) {
	if len(params.Endpoints) == 0 {
		return nil, nil, fmt.Errorf("etcdroute: no endpoints configured")
	}
	dt := params.DialTimeout
	if dt <= 0 {
		dt = 5 * time.Second
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   params.Endpoints,
		DialTimeout: dt,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("etcdroute: could not create etcd client: %w", err)
	}
	return &Oracle{KV: cli, Prefix: params.Prefix}, cli, nil
}

// Key holding the default route target of routeTableID.
func (o *Oracle) Key(routeTableID string) string {
	p := o.Prefix
	if p == "" {
		p = DefaultPrefix
	}
	return path.Join(p, "route-tables", routeTableID, "default")
}

func (o *Oracle) RouteTableExists(ctx context.Context, routeTableID string) (bool, error) {
	resp, err := o.KV.Get(ctx, o.Key(routeTableID), clientv3.WithCountOnly())
	if err != nil {
		return false, fmt.Errorf("etcdroute: could not look up %s: %w", routeTableID, err)
	}
	return resp.Count > 0, nil
}

func (o *Oracle) CurrentMaster(ctx context.Context, routeTableID string) (cluster.NodeID, error) {
	k := o.Key(routeTableID)
	resp, err := o.KV.Get(ctx, k)
	if err != nil {
		return "", fmt.Errorf("etcdroute: could not get %q: %w", k, err)
	}
	if len(resp.Kvs) == 0 || len(resp.Kvs[0].Value) == 0 {
		return "", fmt.Errorf("%w: %q is unset", route.ErrNoDefaultRoute, k)
	}
	return cluster.NodeID(resp.Kvs[0].Value), nil
}

// A plain Put. Racing writers aren't fenced off; the last one wins.
func (o *Oracle) ReplaceMaster(ctx context.Context, routeTableID string, node cluster.NodeID) error {
	k := o.Key(routeTableID)
	if _, err := o.KV.Put(ctx, k, string(node)); err != nil {
		return fmt.Errorf("etcdroute: could not set %q to %s: %w", k, node, err)
	}
	return nil
}
