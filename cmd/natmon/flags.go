package main

import (
	"flag"

	"go.jonnrb.io/natmon/config"
)

var (
	configPath  = flag.String("config", config.DefaultPath, "Path to the YAML configuration file")
	healthCheck = flag.Bool("health_check", false, "If set, connects to the internal healthcheck endpoint and exits.")
	httpAddr    = flag.String("http.addr", "0.0.0.0:8080", "Port to serve metrics and health status on")

	healthUpstream = flag.String("health.upstream_url", "", "If set, the master only reports healthy while it can reach this URL")

	probePrivileged = flag.Bool("probe.privileged", true, "Send raw ICMP echoes (needs CAP_NET_RAW) instead of unprivileged datagram pings")

	metricsUplink = flag.String("metrics.uplink_interface", "", "If set, exports byte counters for this interface")

	natUplink   = flag.String("nat.uplink_interface", "", "If set, sets this host up to NAT traffic out of this interface")
	natLAN      = flag.String("nat.lan_interface", "", "Interface NATed clients are on (default: any)")
	natLockdown = flag.Bool("nat.lockdown", false, "Drop unsolicited input and forwarding other than the NAT itself")
)
