// Package ec2route keeps the master pointer in an EC2 VPC route table: the
// master is the instance targeted by the table's 0.0.0.0/0 route.
package ec2route // import "go.jonnrb.io/natmon/route/ec2route"

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.jonnrb.io/natmon/cluster"
	"go.jonnrb.io/natmon/log"
	"go.jonnrb.io/natmon/route"
)

// The subset of *ec2.Client used here.
type API interface {
	ec2.DescribeRouteTablesAPIClient
	ReplaceRoute(ctx context.Context, params *ec2.ReplaceRouteInput, optFns ...func(*ec2.Options)) (*ec2.ReplaceRouteOutput, error)
}

type Oracle struct {
	API API

	// Region API talks to, if known.
	Region string
}

// Overrides for the SDK's default credential and region resolution. Empty
// fields fall back to the SDK defaults.
type Params struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string

	// Instance metadata endpoint the region is looked up from when neither
	// Region nor the environment sets one. Empty means the IMDS default.
	MetadataEndpoint string
}

func New(ctx context.Context, params Params) (*Oracle, error) {
	var opts []func(*config.LoadOptions) error
	if params.Region != "" {
		opts = append(opts, config.WithRegion(params.Region))
	}
	if params.AccessKeyID != "" || params.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				params.AccessKeyID, params.SecretAccessKey, "")))
	}

	// Only consulted when nothing else sets the region.
	opts = append(opts, config.WithEC2IMDSRegion(func(o *config.UseEC2IMDSRegion) {
		o.Client = imds.New(imds.Options{Endpoint: params.MetadataEndpoint})
	}))

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ec2route: could not load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("ec2route: no AWS region configured and none found in instance metadata")
	}

	cli := ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
		}
	})
	log.V(2).Infof("ec2route: using region %q", cfg.Region)
	return &Oracle{API: cli, Region: cfg.Region}, nil
}

func (o *Oracle) RouteTableExists(ctx context.Context, routeTableID string) (bool, error) {
	p := ec2.NewDescribeRouteTablesPaginator(o.API, &ec2.DescribeRouteTablesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("ec2route: could not list route tables: %w", err)
		}
		for _, rt := range page.RouteTables {
			if aws.ToString(rt.RouteTableId) == routeTableID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (o *Oracle) CurrentMaster(ctx context.Context, routeTableID string) (cluster.NodeID, error) {
	out, err := o.API.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		RouteTableIds: []string{routeTableID},
	})
	if err != nil {
		return "", fmt.Errorf(
			"ec2route: could not get route table %s: %w", routeTableID, err)
	}

	for _, rt := range out.RouteTables {
		if aws.ToString(rt.RouteTableId) != routeTableID {
			continue
		}
		for _, r := range rt.Routes {
			if aws.ToString(r.DestinationCidrBlock) != route.DefaultCIDR {
				continue
			}
			if id := aws.ToString(r.InstanceId); id != "" {
				return cluster.NodeID(id), nil
			}
			// Pointing at a NAT gateway, IGW, etc. Nothing we can reason about.
			return "", fmt.Errorf(
				"%w: route table %s sends %s to a non-instance target",
				route.ErrNoDefaultRoute, routeTableID, route.DefaultCIDR)
		}
	}
	return "", fmt.Errorf("%w: route table %s", route.ErrNoDefaultRoute, routeTableID)
}

func (o *Oracle) ReplaceMaster(ctx context.Context, routeTableID string, node cluster.NodeID) error {
	_, err := o.API.ReplaceRoute(ctx, &ec2.ReplaceRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(route.DefaultCIDR),
		InstanceId:           aws.String(string(node)),
	})
	if err != nil {
		return fmt.Errorf(
			"ec2route: could not point %s on %s at %s: %w",
			route.DefaultCIDR, routeTableID, node, err)
	}
	return nil
}
