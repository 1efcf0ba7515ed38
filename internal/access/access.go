// Package access serves the identity action group: IAM policy inspection,
// database access grants and access validation against the sensitive
// resource set.
package access

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/actiongroup"
)

// Function is one of the functions this action group serves.
type Function string

const (
	CheckIAMPermissions Function = "check_iam_permissions"
	GrantDatabaseAccess Function = "grant_database_access"
	ValidateUserAccess  Function = "validate_user_access"
)

const (
	policyVersion      = "2012-10-17"
	policyNamePrefix   = "DatabaseAccess-"
	publicAccessReason = "Public resource"
)

// IAMAPI is the subset of the IAM client used by Tools.
type IAMAPI interface {
	ListUserPolicies(ctx context.Context, params *iam.ListUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error)
	ListAttachedUserPolicies(ctx context.Context, params *iam.ListAttachedUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error)
	PutUserPolicy(ctx context.Context, params *iam.PutUserPolicyInput, optFns ...func(*iam.Options)) (*iam.PutUserPolicyOutput, error)
}

var _ IAMAPI = (*iam.Client)(nil)

// Tools executes access functions against IAM.
type Tools struct {
	iam       IAMAPI
	sensitive ResourceSet
}

var _ actiongroup.Handler = (*Tools)(nil)

// New creates Tools backed by client. sensitive is consulted by
// grant_database_access and validate_user_access.
func New(client IAMAPI, sensitive ResourceSet) *Tools {
	return &Tools{iam: client, sensitive: sensitive}
}

// NewFromConfig creates Tools with an IAM client built from cfg.
func NewFromConfig(cfg aws.Config, sensitive ResourceSet) *Tools {
	return New(iam.NewFromConfig(cfg), sensitive)
}

// PermissionsResult lists the policies that apply to a user.
type PermissionsResult struct {
	User             string   `json:"user"`
	InlinePolicies   []string `json:"inline_policies"`
	AttachedPolicies []string `json:"attached_policies"`
}

// GrantResult reports the outcome of grant_database_access.
type GrantResult struct {
	Granted  bool   `json:"granted"`
	User     string `json:"user,omitempty"`
	Resource string `json:"resource,omitempty"`
	Policy   string `json:"policy,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// AccessDecision reports the outcome of validate_user_access.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// PolicyDocument is an IAM policy document.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

type Statement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource string   `json:"Resource"`
}

// Invoke implements actiongroup.Handler.
func (t *Tools) Invoke(ctx context.Context, function string, params actiongroup.Params) (any, error) {
	switch Function(function) {
	case CheckIAMPermissions:
		userID, err := params.Require("user_id")
		if err != nil {
			return nil, err
		}
		return t.CheckIAMPermissions(ctx, userID)

	case GrantDatabaseAccess:
		userID, err := params.Require("user_id")
		if err != nil {
			return nil, err
		}
		dbIdentifier, err := params.Require("db_identifier")
		if err != nil {
			return nil, err
		}
		return t.GrantDatabaseAccess(ctx, userID, dbIdentifier)

	case ValidateUserAccess:
		userID, err := params.Require("user_id")
		if err != nil {
			return nil, err
		}
		resource, err := params.Require("resource")
		if err != nil {
			return nil, err
		}
		return t.ValidateUserAccess(ctx, userID, resource), nil
	}
	return nil, &actiongroup.UnknownFunctionError{Function: function}
}

// CheckIAMPermissions lists the inline and attached policies of userID.
func (t *Tools) CheckIAMPermissions(ctx context.Context, userID string) (*PermissionsResult, error) {
	result := &PermissionsResult{
		User:             userID,
		InlinePolicies:   []string{},
		AttachedPolicies: []string{},
	}

	inline := iam.NewListUserPoliciesPaginator(t.iam, &iam.ListUserPoliciesInput{UserName: aws.String(userID)})
	for inline.HasMorePages() {
		page, err := inline.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list inline policies for %s: %w", userID, err)
		}
		result.InlinePolicies = append(result.InlinePolicies, page.PolicyNames...)
	}

	attached := iam.NewListAttachedUserPoliciesPaginator(t.iam, &iam.ListAttachedUserPoliciesInput{UserName: aws.String(userID)})
	for attached.HasMorePages() {
		page, err := attached.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list attached policies for %s: %w", userID, err)
		}
		for _, p := range page.AttachedPolicies {
			result.AttachedPolicies = append(result.AttachedPolicies, aws.ToString(p.PolicyName))
		}
	}

	return result, nil
}

// GrantDatabaseAccess attaches a least-privilege inline policy for
// dbIdentifier to userID, unless the database is sensitive.
func (t *Tools) GrantDatabaseAccess(ctx context.Context, userID, dbIdentifier string) (*GrantResult, error) {
	log := logr.FromContextOrDiscard(ctx)

	if t.sensitive.Contains(dbIdentifier) {
		log.Info("Refusing grant on sensitive resource", "user", userID, "resource", dbIdentifier)
		return &GrantResult{
			Granted: false,
			Reason:  dbIdentifier + " requires manager approval",
		}, nil
	}

	policyName := PolicyName(dbIdentifier)
	doc, err := json.Marshal(DatabasePolicy(dbIdentifier))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy document: %w", err)
	}

	_, err = t.iam.PutUserPolicy(ctx, &iam.PutUserPolicyInput{
		UserName:       aws.String(userID),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(string(doc)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put policy %s on %s: %w", policyName, userID, err)
	}

	log.Info("Granted database access", "user", userID, "resource", dbIdentifier, "policy", policyName)
	return &GrantResult{
		Granted:  true,
		User:     userID,
		Resource: dbIdentifier,
		Policy:   policyName,
	}, nil
}

// ValidateUserAccess checks resource against the sensitive set. It does not
// call IAM.
func (t *Tools) ValidateUserAccess(_ context.Context, _ string, resource string) *AccessDecision {
	if t.sensitive.Contains(resource) {
		return &AccessDecision{
			Allowed: false,
			Reason:  resource + " is restricted. Requires manager approval.",
		}
	}
	return &AccessDecision{Allowed: true, Reason: publicAccessReason}
}

// PolicyName is the deterministic inline policy name for a database grant.
func PolicyName(dbIdentifier string) string {
	return policyNamePrefix + dbIdentifier
}

// DatabasePolicy allows describe and connect on a single RDS instance.
func DatabasePolicy(dbIdentifier string) PolicyDocument {
	return PolicyDocument{
		Version: policyVersion,
		Statement: []Statement{{
			Effect:   "Allow",
			Action:   []string{"rds:DescribeDBInstances", "rds:Connect"},
			Resource: "arn:aws:rds:*:*:db:" + dbIdentifier,
		}},
	}
}

// Functions describes the functions served by Tools.
func (t *Tools) Functions() []actiongroup.FunctionSpec {
	userID := actiongroup.ParameterSpec{Name: "user_id", Description: "IAM user name", Required: true}
	return []actiongroup.FunctionSpec{
		{
			Name:        string(CheckIAMPermissions),
			Description: "List the inline and attached IAM policies of a user",
			Parameters:  []actiongroup.ParameterSpec{userID},
		},
		{
			Name:        string(GrantDatabaseAccess),
			Description: "Grant a user describe and connect access to an RDS database, unless the database requires manager approval",
			Parameters: []actiongroup.ParameterSpec{
				userID,
				{Name: "db_identifier", Description: "RDS DB instance identifier", Required: true},
			},
		},
		{
			Name:        string(ValidateUserAccess),
			Description: "Check whether a user may access a resource without manager approval",
			Parameters: []actiongroup.ParameterSpec{
				userID,
				{Name: "resource", Description: "Resource identifier", Required: true},
			},
		},
	}
}
