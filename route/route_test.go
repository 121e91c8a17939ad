package route

import (
	"context"
	"testing"

	"go.jonnrb.io/natmon/cluster"
)

type recordingOracle struct {
	master   cluster.NodeID
	replaced []cluster.NodeID
}

func (o *recordingOracle) RouteTableExists(context.Context, string) (bool, error) {
	return true, nil
}

func (o *recordingOracle) CurrentMaster(context.Context, string) (cluster.NodeID, error) {
	return o.master, nil
}

func (o *recordingOracle) ReplaceMaster(_ context.Context, _ string, node cluster.NodeID) error {
	o.replaced = append(o.replaced, node)
	o.master = node
	return nil
}

func TestDryRun_DoesNotWrite(t *testing.T) {
	o := &recordingOracle{master: "i-00000002"}
	d := DryRun{o}

	err := d.ReplaceMaster(context.Background(), "rtb-00000000", "i-00000001")

	if err != nil {
		t.Errorf("expected err == nil; got err == %v", err)
	}
	if len(o.replaced) != 0 {
		t.Errorf("expected no writes; got: %v", o.replaced)
	}
}

func TestDryRun_PassesReadsThrough(t *testing.T) {
	o := &recordingOracle{master: "i-00000002"}
	d := DryRun{o}

	m, err := d.CurrentMaster(context.Background(), "rtb-00000000")

	if err != nil || m != "i-00000002" {
		t.Errorf("expected (i-00000002, nil); got (%v, %v)", m, err)
	}
	if ok, err := d.RouteTableExists(context.Background(), "rtb-00000000"); !ok || err != nil {
		t.Errorf("expected (true, nil); got (%v, %v)", ok, err)
	}
}
