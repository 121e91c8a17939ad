package main

import (
	"context"
	"errors"
	"testing"

	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/config"
	"go.jonnrb.io/natmon/metadata"
	"go.jonnrb.io/natmon/metadata/metadatatesting"
)

func TestInstanceIdentity_RetriedUntilItWorks(t *testing.T) {
	stubErr := errors.New("metadata service unavailable")
	s := metadatatesting.Stub{
		metadatatesting.InstallSequence(&metadata.GetInstanceID,
			metadatatesting.Value{Err: stubErr},
			metadatatesting.Value{V: "i-00000002"},
			metadatatesting.Value{V: "i-changed"}),
	}
	defer s.Uninstall()

	r := cluster.NewRegistry(cluster.Membership{
		{ID: "i-00000001", Addr: "10.0.0.1"},
		{ID: "i-00000002", Addr: "10.0.0.2"},
		{ID: "i-00000003", Addr: "10.0.0.3"},
	}, instanceIdentity)
	ctx := context.Background()

	if _, err := r.LocalNodeID(ctx); !errors.Is(err, stubErr) {
		t.Errorf("expected err wrapping stubErr; got err == %v", err)
	}
	for i := 0; i < 2; i++ {
		id, err := r.LocalNodeID(ctx)
		if err != nil || id != "i-00000002" {
			t.Errorf("expected (i-00000002, nil); got (%v, %v)", id, err)
		}
	}
}

func TestNewOracle_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.RouteBackend = "gce"

	if _, _, err := newOracle(context.Background(), cfg); err == nil {
		t.Error("expected err != nil")
	}
}

func TestNewOracle_EtcdNeedsEndpoints(t *testing.T) {
	cfg := config.Default()
	cfg.RouteBackend = config.BackendEtcd

	if _, _, err := newOracle(context.Background(), cfg); err == nil {
		t.Error("expected err != nil")
	}
}
