package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/Pablojox/analyze-transactions/config"
)

// Directory attribute carrying the aggregation-side customer id. Users
// without it are not banking customers and contribute nothing.
const bankingCustomerIDAttr = "custom:banking_customer_id"

// CognitoDirectory enumerates banking customer ids from a Cognito user
// pool.
type CognitoDirectory struct {
	Client     *cognito.Client
	UserPoolID string
}

func NewCognitoDirectory(cfg *config.Config) *CognitoDirectory {
	opts := cognito.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
	}
	if cfg.CognitoEndpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.CognitoEndpoint)
	}
	if cfg.HTTPTimeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &CognitoDirectory{
		Client:     cognito.New(opts),
		UserPoolID: cfg.UserPoolID,
	}
}

// ListCustomerIDs drains the paginated user listing and returns every
// banking customer id found, in listing order. Duplicates from the
// directory are preserved; aggregation groups them out downstream. A
// listing failure is fatal for the run, there is nothing sensible to
// collect without the customer universe.
func (d *CognitoDirectory) ListCustomerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var token *string
	for {
		out, err := d.Client.ListUsers(ctx, &cognito.ListUsersInput{
			UserPoolId:      aws.String(d.UserPoolID),
			PaginationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing users in pool %s: %w", d.UserPoolID, err)
		}

		for _, user := range out.Users {
			if id, ok := attributeValue(user.Attributes, bankingCustomerIDAttr); ok {
				ids = append(ids, id)
			}
		}

		token = out.PaginationToken
		if token == nil || *token == "" {
			return ids, nil
		}
	}
}

// attributeValue looks name up in the user's attribute list, with an
// explicit absent case for users that lack it.
func attributeValue(attrs []types.AttributeType, name string) (string, bool) {
	byName := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		byName[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	value, ok := byName[name]
	return value, ok && value != ""
}
