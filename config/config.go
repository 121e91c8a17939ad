// Package config loads the natmon YAML configuration file.
package config // import "go.jonnrb.io/natmon/config"

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"go.jonnrb.io/natmon/cluster"
)

const DefaultPath = "/etc/nat_monitor.yml"

type Config struct {
	RouteTableID string `yaml:"route_table_id"`
	Nodes        Nodes  `yaml:"nodes"`

	Pings int `yaml:"pings"`

	// Seconds; fractions are allowed.
	PingTimeout       float64 `yaml:"ping_timeout"`
	HeartbeatInterval float64 `yaml:"heartbeat_interval"`

	// Route writes are logged instead of performed.
	Mocking bool `yaml:"mocking"`

	RouteBackend string `yaml:"route_backend"`

	AWS        AWS        `yaml:"aws"`
	Metadata   Metadata   `yaml:"metadata"`
	Etcd       Etcd       `yaml:"etcd"`
	Monitoring Monitoring `yaml:"monitoring"`
}

const (
	BackendEC2  = "ec2"
	BackendEtcd = "etcd"
)

// Empty fields fall back to the SDK's default chain.
type AWS struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
}

type Metadata struct {
	Endpoint string `yaml:"endpoint"`
}

type Etcd struct {
	Endpoints   []string `yaml:"endpoints"`
	Prefix      string   `yaml:"prefix"`
	DialTimeout float64  `yaml:"dial_timeout"`
}

type Monitoring struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Code    string `yaml:"code"`
	AuthKey string `yaml:"auth_key"`
}

func Default() *Config {
	return &Config{
		Pings:             3,
		PingTimeout:       1,
		HeartbeatInterval: 10,
		RouteBackend:      BackendEC2,
		Etcd: Etcd{
			Prefix:      "/natmon",
			DialTimeout: 5,
		},
		Monitoring: Monitoring{
			URL: "https://cronitor.link",
		},
	}
}

// Reads the file at path over Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not read %q: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: could not parse %q: %w", path, err)
	}
	return c, nil
}

func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) PingTimeoutDuration() time.Duration {
	return seconds(c.PingTimeout)
}

func (c *Config) HeartbeatIntervalDuration() time.Duration {
	return seconds(c.HeartbeatInterval)
}

func (c *Config) EtcdDialTimeout() time.Duration {
	return seconds(c.Etcd.DialTimeout)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Node ids to addresses, in file order.
type Nodes cluster.Membership

func (n *Nodes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: line %d: nodes must be a mapping of id to address", value.Line)
	}

	r := make(Nodes, 0, len(value.Content)/2)
	seen := make(map[cluster.NodeID]bool)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]

		var id, addr string
		if err := k.Decode(&id); err != nil {
			return err
		}
		if err := v.Decode(&addr); err != nil {
			return err
		}
		if seen[cluster.NodeID(id)] {
			return fmt.Errorf("config: line %d: duplicate node %q", k.Line, id)
		}
		seen[cluster.NodeID(id)] = true
		r = append(r, cluster.Node{ID: cluster.NodeID(id), Addr: addr})
	}
	*n = r
	return nil
}

func (n Nodes) Membership() cluster.Membership {
	return cluster.Membership(n)
}
