// Package metadata looks up this instance's identity from the EC2 instance
// metadata service.
package metadata // import "go.jonnrb.io/natmon/metadata"

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

type Getter func(ctx context.Context) (string, error)

var (
	instanceID = InstanceInfo{path: "instance-id"}
)

// Swappable for tests; see metadatatesting.
var (
	GetInstanceID Getter = instanceID.Get
)

// Points lookups at a different metadata endpoint, e.g. a local mock. Must be
// called before the first lookup.
func SetEndpoint(endpoint string) {
	client = imds.New(imds.Options{Endpoint: endpoint})
}

var client = imds.New(imds.Options{})

type InstanceInfo struct {
	path string
}

// Plain text value at path, without surrounding whitespace.
func (i InstanceInfo) Get(ctx context.Context) (string, error) {
	out, err := client.GetMetadata(ctx, &imds.GetMetadataInput{Path: i.path})
	if err != nil {
		return "", fmt.Errorf("metadata: could not get %q: %w", i.path, err)
	}
	defer out.Content.Close()

	b, err := io.ReadAll(out.Content)
	if err != nil {
		return "", fmt.Errorf("metadata: could not read %q: %w", i.path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
