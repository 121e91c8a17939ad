package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var members = Membership{
	{"i-00000001", "1.1.1.1"},
	{"i-00000002", "1.1.1.2"},
	{"i-00000003", "1.1.1.3"},
}

func staticIdentity(id NodeID, calls *int) IdentityFunc {
	return func(context.Context) (NodeID, error) {
		*calls++
		return id, nil
	}
}

func TestRegistry_PeerSetExcludesLocal(t *testing.T) {
	var calls int
	r := NewRegistry(members, staticIdentity("i-00000001", &calls))

	peers, err := r.PeerSet(context.Background())

	if err != nil {
		t.Fatalf("expected err == nil; got err == %v", err)
	}
	want := Membership{
		{"i-00000002", "1.1.1.2"},
		{"i-00000003", "1.1.1.3"},
	}
	if diff := cmp.Diff(want, peers); diff != "" {
		t.Errorf("bad peer set; diff: %v", diff)
	}
}

func TestRegistry_MemoizesIdentity(t *testing.T) {
	var calls int
	r := NewRegistry(members, staticIdentity("i-00000002", &calls))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if id, err := r.LocalNodeID(ctx); err != nil || id != "i-00000002" {
			t.Fatalf("expected (i-00000002, nil); got (%v, %v)", id, err)
		}
		if _, err := r.PeerSet(ctx); err != nil {
			t.Fatalf("expected err == nil; got err == %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("expected calls == 1; got calls == %v", calls)
	}
}

func TestRegistry_RetriesFailedIdentity(t *testing.T) {
	var calls int
	r := NewRegistry(members, func(context.Context) (NodeID, error) {
		calls++
		if calls == 1 {
			return "", errors.New("metadata down")
		}
		return "i-00000003", nil
	})
	ctx := context.Background()

	if _, err := r.LocalNodeID(ctx); err == nil {
		t.Fatal("expected err != nil on first lookup")
	}
	id, err := r.LocalNodeID(ctx)

	if err != nil {
		t.Fatalf("expected err == nil; got err == %v", err)
	}
	if id != "i-00000003" {
		t.Errorf("expected id == i-00000003; got id == %v", id)
	}
	if calls != 2 {
		t.Errorf("expected calls == 2; got calls == %v", calls)
	}
}

func TestRegistry_EmptyIdentityIsAnError(t *testing.T) {
	var calls int
	r := NewRegistry(members, staticIdentity("", &calls))

	if _, err := r.PeerSet(context.Background()); err == nil {
		t.Error("expected err != nil for an empty node id")
	}
}

func TestRegistry_UnknownLocalKeepsAllPeers(t *testing.T) {
	var calls int
	r := NewRegistry(members, staticIdentity("i-99999999", &calls))

	peers, err := r.PeerSet(context.Background())

	if err != nil {
		t.Fatalf("expected err == nil; got err == %v", err)
	}
	if diff := cmp.Diff(members, peers); diff != "" {
		t.Errorf("bad peer set; diff: %v", diff)
	}
}

func TestMembership_Addr(t *testing.T) {
	if a, ok := members.Addr("i-00000003"); !ok || a != "1.1.1.3" {
		t.Errorf("expected (1.1.1.3, true); got (%v, %v)", a, ok)
	}
	if _, ok := members.Addr("i-nope"); ok {
		t.Error("expected lookup of unknown id to fail")
	}
}
