package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pablojox/analyze-transactions/config"
)

func cognitoUser(customerID string) map[string]interface{} {
	attrs := []map[string]string{{"Name": "email", "Value": customerID + "@example.com"}}
	if customerID != "" {
		attrs = append(attrs, map[string]string{"Name": "custom:banking_customer_id", "Value": customerID})
	}
	return map[string]interface{}{"Username": "user-" + customerID, "Attributes": attrs}
}

func TestListCustomerIDs_DrainsPagination(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AWSCognitoIdentityProviderService.ListUsers", r.Header.Get("X-Amz-Target"))

		var in struct {
			UserPoolId      string
			PaginationToken string
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "eu-west-1_pool", in.UserPoolId)
		requests = append(requests, in.PaginationToken)

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		switch in.PaginationToken {
		case "":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"Users":           []interface{}{cognitoUser("C1"), cognitoUser(""), cognitoUser("C2")},
				"PaginationToken": "page-2",
			})
		case "page-2":
			// C1 appears again; duplicates are preserved as-is.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"Users": []interface{}{cognitoUser("C1")},
			})
		default:
			t.Errorf("unexpected pagination token %q", in.PaginationToken)
		}
	}))
	defer server.Close()

	directory := NewCognitoDirectory(&config.Config{
		Region:             "eu-west-1",
		AWSAccessKeyID:     "AKIATEST",
		AWSSecretAccessKey: "secret",
		UserPoolID:         "eu-west-1_pool",
		CognitoEndpoint:    server.URL,
		HTTPTimeout:        5 * time.Second,
	})

	ids, err := directory.ListCustomerIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2", "C1"}, ids)
	assert.Equal(t, []string{"", "page-2"}, requests)
}

func TestListCustomerIDs_ListingFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"__type":"ResourceNotFoundException","message":"User pool does not exist."}`)
	}))
	defer server.Close()

	directory := NewCognitoDirectory(&config.Config{
		Region:             "eu-west-1",
		AWSAccessKeyID:     "AKIATEST",
		AWSSecretAccessKey: "secret",
		UserPoolID:         "eu-west-1_missing",
		CognitoEndpoint:    server.URL,
		HTTPTimeout:        5 * time.Second,
	})

	_, err := directory.ListCustomerIDs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eu-west-1_missing")
}
