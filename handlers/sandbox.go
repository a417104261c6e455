package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pablojox/analyze-transactions/services"
)

// SandboxHandler emulates both upstream APIs from fixture data so the
// collector can run end to end against localhost: the Cognito ListUsers
// operation and the Salt Edge partners v1 resources, pagination included.
// Each fixture customer is exposed as one active connection ("conn-<id>")
// holding one account ("acc-<id>"), plus an inactive connection and an
// ineligible loan account so the client-side filters see realistic noise.
type SandboxHandler struct {
	Fixture  *services.FixtureSource
	PageSize int
}

func NewSandboxHandler(fixture *services.FixtureSource, pageSize int) *SandboxHandler {
	if pageSize < 1 {
		pageSize = 25
	}
	return &SandboxHandler{Fixture: fixture, PageSize: pageSize}
}

const customerIDAttribute = "custom:banking_customer_id"

// ListUsers implements the Cognito ListUsers wire operation: POST / with
// an X-Amz-Target header and a JSON body carrying the pool id and an
// optional pagination token (here: a plain offset).
func (h *SandboxHandler) ListUsers(c *gin.Context) {
	if !strings.HasSuffix(c.GetHeader("X-Amz-Target"), "ListUsers") {
		c.JSON(http.StatusBadRequest, gin.H{"__type": "UnknownOperationException"})
		return
	}

	var in struct {
		UserPoolId      string `json:"UserPoolId"`
		PaginationToken string `json:"PaginationToken"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.UserPoolId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"__type": "InvalidParameterException"})
		return
	}

	customers := h.Fixture.Customers()
	offset := 0
	if in.PaginationToken != "" {
		var err error
		if offset, err = strconv.Atoi(in.PaginationToken); err != nil || offset < 0 || offset > len(customers) {
			c.JSON(http.StatusBadRequest, gin.H{"__type": "InvalidParameterException"})
			return
		}
	}

	end := offset + h.PageSize
	if end > len(customers) {
		end = len(customers)
	}

	users := make([]gin.H, 0, end-offset)
	for _, customerID := range customers[offset:end] {
		users = append(users, gin.H{
			"Username": "user-" + customerID,
			"Attributes": []gin.H{
				{"Name": "email", "Value": customerID + "@example.com"},
				{"Name": customerIDAttribute, "Value": customerID},
			},
		})
	}

	out := gin.H{"Users": users}
	if end < len(customers) {
		out["PaginationToken"] = strconv.Itoa(end)
	}
	c.Header("Content-Type", "application/x-amz-json-1.1")
	c.JSON(http.StatusOK, out)
}

func (h *SandboxHandler) authorized(c *gin.Context) bool {
	if c.GetHeader("App-id") == "" || c.GetHeader("Secret") == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"class": "ApiKeyNotProvided"}})
		return false
	}
	return true
}

// GetConnections lists a customer's connections. One is active and
// carries the data; the second is inactive and must be filtered out by
// the caller.
func (h *SandboxHandler) GetConnections(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	customerID := c.Query("customer_id")
	if len(h.Fixture.TransactionsFor(customerID)) == 0 {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": []gin.H{
		{"id": "conn-" + customerID, "status": "active"},
		{"id": "conn-" + customerID + "-old", "status": "inactive"},
	}})
}

// GetAccounts lists a connection's accounts in the data envelope: the
// customer's transacting account plus a loan that is not eligible.
func (h *SandboxHandler) GetAccounts(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	customerID := strings.TrimPrefix(c.Query("connection_id"), "conn-")
	c.JSON(http.StatusOK, gin.H{"data": []gin.H{
		{"id": "acc-" + customerID, "nature": "account"},
		{"id": "loan-" + customerID, "nature": "loan"},
	}})
}

// GetTransactions serves one page of the account's transactions with a
// relative next_page pointer under the meta envelope, exactly like the
// live API.
func (h *SandboxHandler) GetTransactions(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	connectionID := c.Query("connection_id")
	accountID := c.Query("account_id")
	customerID := strings.TrimPrefix(accountID, "acc-")

	page := 1
	if raw := c.Query("page"); raw != "" {
		var err error
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"class": "InvalidPage"}})
			return
		}
	}

	rows := h.Fixture.TransactionsFor(customerID)
	for i := range rows {
		rows[i].AccountID = accountID
	}

	start := (page - 1) * h.PageSize
	if start > len(rows) {
		start = len(rows)
	}
	end := start + h.PageSize
	if end > len(rows) {
		end = len(rows)
	}

	meta := gin.H{}
	if end < len(rows) {
		meta["next_page"] = "/api/partners/v1/transactions?connection_id=" + connectionID +
			"&account_id=" + accountID + "&page=" + strconv.Itoa(page+1)
	}
	c.JSON(http.StatusOK, gin.H{"data": rows[start:end], "meta": meta})
}
