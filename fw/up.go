package fw

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// Brings Link up on Start. The link is left up on Stop unless DownOnStop is
// set, since the uplink usually carries the host's own traffic too.
type Up struct {
	Link       Link
	DownOnStop bool
}

func (a *Up) Start() error {
	l, err := netlink.LinkByName(a.Link.Name())
	if err != nil {
		return fmt.Errorf("fw: failed to get link %q: %w", a.Link.Name(), err)
	}
	if err := netlink.LinkSetUp(l); err != nil {
		return fmt.Errorf("fw: failed to up link %q: %w", a.Link.Name(), err)
	}
	return nil
}

func (a *Up) Stop() error {
	if !a.DownOnStop {
		return nil
	}
	l, err := netlink.LinkByName(a.Link.Name())
	if err != nil {
		return fmt.Errorf("fw: failed to get link %q: %w", a.Link.Name(), err)
	}
	if err := netlink.LinkSetDown(l); err != nil {
		return fmt.Errorf("fw: failed to down link %q: %w", a.Link.Name(), err)
	}
	return nil
}
