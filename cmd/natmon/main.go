package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/config"
	"go.jonnrb.io/natmon/fw"
	"go.jonnrb.io/natmon/ha"
	"go.jonnrb.io/natmon/health"
	"go.jonnrb.io/natmon/lifecycle"
	"go.jonnrb.io/natmon/log"
	"go.jonnrb.io/natmon/metadata"
	"go.jonnrb.io/natmon/metrics"
	"go.jonnrb.io/natmon/monitor"
	"go.jonnrb.io/natmon/probe"
	"go.jonnrb.io/natmon/route"
	"go.jonnrb.io/natmon/route/ec2route"
	"go.jonnrb.io/natmon/route/etcdroute"
)

func main() {
	flag.Parse()

	if *healthCheck {
		os.Exit(runHealthCheck())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	oracle, closer, err := newOracle(ctx, cfg)
	if err != nil {
		log.Fatalf("error setting up route backend: %v", err)
	}

	if err := cfg.Validate(ctx, oracle); err != nil {
		var se *config.StartupError
		if errors.As(err, &se) {
			log.Error(se.Msg)
			log.Flush()
			os.Exit(se.Code)
		}
		log.Fatal(err)
	}

	if cfg.Mocking {
		log.Warning("mocking enabled; the route table will not be modified")
		oracle = route.DryRun{Oracle: oracle}
	}
	log.Info("Starting NAT Monitor")

	s, err := newSuite(ctx, cfg, oracle)
	if err != nil {
		log.Fatalf("error setting up: %v", err)
	}
	if closer != nil {
		s = lifecycle.Join(s, lifecycle.Suite{Wrappers: []lifecycle.Wrapper{closer}})
	}

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Info("stopped")
}

func runHealthCheck() int {
	client := &http.Client{Timeout: 30 * time.Second}
	_, port, err := net.SplitHostPort(*httpAddr)
	if err != nil {
		fmt.Printf("bad address %q: %v\n", *httpAddr, err)
		return 1
	}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%v/health", port))
	if err != nil {
		fmt.Printf("error connecting to healthcheck: %v\n", err)
		return 1
	}
	defer resp.Body.Close()
	io.Copy(os.Stdout, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

// The Wrapper, if not nil, releases the backend's resources.
func newOracle(ctx context.Context, cfg *config.Config) (route.Oracle, lifecycle.Wrapper, error) {
	switch cfg.RouteBackend {
	case config.BackendEC2:
		o, err := ec2route.New(ctx, ec2route.Params{
			AccessKeyID:      cfg.AWS.AccessKeyID,
			SecretAccessKey:  cfg.AWS.SecretAccessKey,
			Region:           cfg.AWS.Region,
			Endpoint:         cfg.AWS.Endpoint,
			MetadataEndpoint: cfg.Metadata.Endpoint,
		})
		return o, nil, err
	case config.BackendEtcd:
		o, cli, err := etcdroute.New(etcdroute.Params{
			Endpoints:   cfg.Etcd.Endpoints,
			Prefix:      cfg.Etcd.Prefix,
			DialTimeout: cfg.EtcdDialTimeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return o, lifecycle.WrapperStruct{StopFunc: cli.Close}, nil
	default:
		return nil, nil, fmt.Errorf("unknown route_backend %q", cfg.RouteBackend)
	}
}

func newSuite(ctx context.Context, cfg *config.Config, oracle route.Oracle) (lifecycle.Suite, error) {
	if cfg.Metadata.Endpoint != "" {
		metadata.SetEndpoint(cfg.Metadata.Endpoint)
	}
	registry := cluster.NewRegistry(cfg.Nodes.Membership(), instanceIdentity)

	engine := &ha.Engine{
		RouteTableID: cfg.RouteTableID,
		Registry:     registry,
		Oracle:       oracle,
		Prober:       probe.ICMP{Privileged: *probePrivileged},
		ProbeOptions: probe.Options{
			Timeout: cfg.PingTimeoutDuration(),
			Count:   cfg.Pings,
		},
	}

	var obs ha.Observers

	hc := health.New(ctx, *healthUpstream)
	obs.Add(hc)

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return lifecycle.Suite{}, fmt.Errorf("error setting up metrics: %w", err)
	}
	obs.Add(m)

	pinger := monitor.New(monitor.Params{
		Enabled: cfg.Monitoring.Enabled,
		URL:     cfg.Monitoring.URL,
		Code:    cfg.Monitoring.Code,
		AuthKey: cfg.Monitoring.AuthKey,
	}, http.DefaultClient)
	obs.Add(pinger)

	sched := &ha.Scheduler{
		Ticker:   engine,
		Interval: cfg.HeartbeatIntervalDuration(),
		Observer: &obs,
	}

	mux := http.NewServeMux()
	mux.Handle("/health", hc)
	mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))

	s := lifecycle.Suite{
		Actives: []lifecycle.Active{
			sched,
			lifecycle.ActiveFunc(func(ctx context.Context) error {
				return serveHTTP(ctx, *httpAddr, mux)
			}),
			lifecycle.ActiveFunc(func(ctx context.Context) error {
				pinger.Run(ctx)
				return nil
			}),
		},
	}

	if *metricsUplink != "" {
		s.Actives = append(s.Actives, lifecycle.ActiveFunc(func(ctx context.Context) error {
			m.ScrapeUplink(ctx, *metricsUplink)
			return nil
		}))
	}

	if *natUplink != "" {
		fwCfg := fw.Config{
			Uplink:   fw.Link(*natUplink),
			LAN:      fw.Link(*natLAN),
			Lockdown: *natLockdown,
		}
		if _, port, err := net.SplitHostPort(*httpAddr); err == nil {
			fwCfg.OpenPorts = append(fwCfg.OpenPorts, fw.Port{Proto: "tcp", Port: port})
		}
		s = lifecycle.Join(fw.Suite(fwCfg), s)
	}

	return s, nil
}

func instanceIdentity(ctx context.Context) (cluster.NodeID, error) {
	id, err := metadata.GetInstanceID(ctx)
	return cluster.NodeID(id), err
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error listening on %q: %w", addr, err)
	}

	srv := &http.Server{Handler: h}
	go func() {
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Infof("listening on %q", addr)
	if err := srv.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}
