// Package infra serves the infrastructure action group: RDS and EC2 status
// lookups.
package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/kagent-dev/opsbridge/internal/actiongroup"
)

// Function is one of the functions this action group serves.
type Function string

const (
	CheckDatabaseStatus Function = "check_database_status"
	CheckEC2Status      Function = "check_ec2_status"
	ListDatabases       Function = "list_databases"
)

const endpointUnavailable = "N/A"

// ErrNotFound is wrapped by every lookup that matched no resource.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup that returned no records.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RDSAPI is the subset of the RDS client used by Tools.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// EC2API is the subset of the EC2 client used by Tools.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

var (
	_ RDSAPI = (*rds.Client)(nil)
	_ EC2API = (*ec2.Client)(nil)
)

// Tools executes infrastructure functions against RDS and EC2.
type Tools struct {
	rds RDSAPI
	ec2 EC2API
}

var _ actiongroup.Handler = (*Tools)(nil)

func New(rdsClient RDSAPI, ec2Client EC2API) *Tools {
	return &Tools{rds: rdsClient, ec2: ec2Client}
}

// NewFromConfig creates Tools with RDS and EC2 clients built from cfg.
func NewFromConfig(cfg aws.Config) *Tools {
	return New(rds.NewFromConfig(cfg), ec2.NewFromConfig(cfg))
}

// DatabaseStatus is the result of check_database_status.
type DatabaseStatus struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
	Endpoint   string `json:"endpoint"`
	Engine     string `json:"engine"`
}

// InstanceStatus is the result of check_ec2_status.
type InstanceStatus struct {
	InstanceID string `json:"instance_id"`
	State      string `json:"state"`
	Type       string `json:"type"`
}

// DatabaseSummary is one entry of list_databases.
type DatabaseSummary struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
	Engine     string `json:"engine"`
}

// DatabaseList is the result of list_databases.
type DatabaseList struct {
	Databases []DatabaseSummary `json:"databases"`
}

// Invoke implements actiongroup.Handler.
func (t *Tools) Invoke(ctx context.Context, function string, params actiongroup.Params) (any, error) {
	switch Function(function) {
	case CheckDatabaseStatus:
		id, err := params.Require("db_identifier")
		if err != nil {
			return nil, err
		}
		return t.CheckDatabaseStatus(ctx, id)

	case CheckEC2Status:
		id, err := params.Require("instance_id")
		if err != nil {
			return nil, err
		}
		return t.CheckEC2Status(ctx, id)

	case ListDatabases:
		return t.ListDatabases(ctx)
	}
	return nil, &actiongroup.UnknownFunctionError{Function: function}
}

// CheckDatabaseStatus describes exactly one DB instance.
func (t *Tools) CheckDatabaseStatus(ctx context.Context, dbIdentifier string) (*DatabaseStatus, error) {
	out, err := t.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(dbIdentifier),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe database %s: %w", dbIdentifier, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, &NotFoundError{Kind: "database", ID: dbIdentifier}
	}

	db := out.DBInstances[0]
	endpoint := endpointUnavailable
	if db.Endpoint != nil && db.Endpoint.Address != nil {
		endpoint = aws.ToString(db.Endpoint.Address)
	}
	return &DatabaseStatus{
		Identifier: aws.ToString(db.DBInstanceIdentifier),
		Status:     aws.ToString(db.DBInstanceStatus),
		Endpoint:   endpoint,
		Engine:     aws.ToString(db.Engine),
	}, nil
}

// CheckEC2Status describes exactly one EC2 instance.
func (t *Tools) CheckEC2Status(ctx context.Context, instanceID string) (*InstanceStatus, error) {
	out, err := t.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instance %s: %w", instanceID, err)
	}
	if len(out.Reservations) == 0 || len(out.Reservations[0].Instances) == 0 {
		return nil, &NotFoundError{Kind: "instance", ID: instanceID}
	}

	inst := out.Reservations[0].Instances[0]
	state := ""
	if inst.State != nil {
		state = string(inst.State.Name)
	}
	return &InstanceStatus{
		InstanceID: aws.ToString(inst.InstanceId),
		State:      state,
		Type:       string(inst.InstanceType),
	}, nil
}

// ListDatabases enumerates every visible DB instance across all pages.
func (t *Tools) ListDatabases(ctx context.Context) (*DatabaseList, error) {
	result := &DatabaseList{Databases: []DatabaseSummary{}}

	pages := rds.NewDescribeDBInstancesPaginator(t.rds, &rds.DescribeDBInstancesInput{})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list databases: %w", err)
		}
		for _, db := range page.DBInstances {
			result.Databases = append(result.Databases, summarize(db))
		}
	}
	return result, nil
}

func summarize(db rdstypes.DBInstance) DatabaseSummary {
	return DatabaseSummary{
		Identifier: aws.ToString(db.DBInstanceIdentifier),
		Status:     aws.ToString(db.DBInstanceStatus),
		Engine:     aws.ToString(db.Engine),
	}
}

// Functions describes the functions served by Tools.
func (t *Tools) Functions() []actiongroup.FunctionSpec {
	return []actiongroup.FunctionSpec{
		{
			Name:        string(CheckDatabaseStatus),
			Description: "Get the status, endpoint and engine of an RDS database",
			Parameters: []actiongroup.ParameterSpec{
				{Name: "db_identifier", Description: "RDS DB instance identifier", Required: true},
			},
		},
		{
			Name:        string(CheckEC2Status),
			Description: "Get the state and instance type of an EC2 instance",
			Parameters: []actiongroup.ParameterSpec{
				{Name: "instance_id", Description: "EC2 instance ID", Required: true},
			},
		},
		{
			Name:        string(ListDatabases),
			Description: "List all RDS databases with their status and engine",
		},
	}
}
