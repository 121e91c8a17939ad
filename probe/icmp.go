package probe

import (
	"context"
	"fmt"
	"net"

	probing "github.com/prometheus-community/pro-bing"
)

// Probes with ICMP echo requests. When Privileged is false, unprivileged "UDP"
// ICMP sockets are used, which needs net.ipv4.ping_group_range to include the
// process's group.
type ICMP struct {
	Privileged bool
}

// Swapped out in tests.
var lookupIPAddr = net.DefaultResolver.LookupIPAddr

func (p ICMP) Probe(ctx context.Context, addr string, opts Options) error {
	opts = opts.Normalized()

	ip, err := resolve(ctx, addr)
	if err != nil {
		return err
	}

	pinger := probing.New(ip.String())
	if err := pinger.Resolve(); err != nil {
		return fmt.Errorf("probe: could not create pinger for %q: %w", addr, err)
	}

	pinger.SetPrivileged(p.Privileged)
	pinger.Count = opts.Count
	pinger.Interval = opts.Timeout
	pinger.Timeout = opts.Budget()
	// One reply is enough.
	pinger.OnRecv = func(*probing.Packet) {
		pinger.Stop()
	}

	if err := pinger.RunWithContext(ctx); err != nil {
		return fmt.Errorf("probe: pinging %q: %w", addr, err)
	}

	if stats := pinger.Statistics(); stats.PacketsRecv == 0 {
		return fmt.Errorf("%w from %q after %d echoes", ErrNoReply, addr, stats.PacketsSent)
	}
	return nil
}

// Looks addr up under ctx so a slow resolver counts against the probe's
// budget. IPv4 addresses are preferred.
func resolve(ctx context.Context, addr string) (net.IP, error) {
	if ip := net.ParseIP(addr); ip != nil {
		return ip, nil
	}

	ips, err := lookupIPAddr(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("probe: could not resolve %q: %w", addr, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("probe: %q has no addresses", addr)
	}
	for _, ia := range ips {
		if ip4 := ia.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return ips[0].IP, nil
}
