package connection

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

// ComplianceFilter narrows a compliance listing. Zero fields are omitted.
type ComplianceFilter struct {
	Status   string
	AreaID   string
	Priority string
}

func (f ComplianceFilter) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.AreaID != "" {
		q.Set("areaId", f.AreaID)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ComplianceClient wraps the /compliance endpoints.
type ComplianceClient struct {
	http *HTTPClient
}

// NewComplianceClient creates a ComplianceClient.
func NewComplianceClient(c *HTTPClient) *ComplianceClient {
	return &ComplianceClient{http: c}
}

// List returns compliance items matching f.
func (c *ComplianceClient) List(ctx context.Context, token string, f ComplianceFilter) domain.Result[[]domain.Compliance] {
	return call[[]domain.Compliance](ctx, c.http, "compliance_list", http.MethodGet, "/compliance"+f.query(), token, nil)
}

// Get returns one compliance item.
func (c *ComplianceClient) Get(ctx context.Context, token string, id int64) domain.Result[domain.Compliance] {
	return call[domain.Compliance](ctx, c.http, "compliance_get", http.MethodGet, "/compliance/"+itoa(id), token, nil)
}

// Create creates a compliance item.
func (c *ComplianceClient) Create(ctx context.Context, token string, in domain.ComplianceInput) domain.Result[domain.Compliance] {
	return call[domain.Compliance](ctx, c.http, "compliance_create", http.MethodPost, "/compliance", token, in)
}

// Delete removes a compliance item.
func (c *ComplianceClient) Delete(ctx context.Context, token string, id int64) domain.Result[domain.Empty] {
	return call[domain.Empty](ctx, c.http, "compliance_delete", http.MethodDelete, "/compliance/"+itoa(id), token, nil)
}

// Stats returns the compliance summary.
func (c *ComplianceClient) Stats(ctx context.Context, token string) domain.Result[domain.ComplianceStats] {
	return call[domain.ComplianceStats](ctx, c.http, "compliance_stats", http.MethodGet, "/compliance/stats", token, nil)
}

// Deadlines returns items due within days.
func (c *ComplianceClient) Deadlines(ctx context.Context, token string, days int) domain.Result[[]domain.Compliance] {
	path := "/compliance/deadlines?days=" + strconv.Itoa(days)
	return call[[]domain.Compliance](ctx, c.http, "compliance_deadlines", http.MethodGet, path, token, nil)
}

// DocumentClient wraps the /documents endpoints.
type DocumentClient struct {
	http *HTTPClient
}

// NewDocumentClient creates a DocumentClient.
func NewDocumentClient(c *HTTPClient) *DocumentClient {
	return &DocumentClient{http: c}
}

// List returns all documents visible to the user.
func (c *DocumentClient) List(ctx context.Context, token string) domain.Result[[]domain.Document] {
	return call[[]domain.Document](ctx, c.http, "document_list", http.MethodGet, "/documents", token, nil)
}

// Get returns one document's metadata.
func (c *DocumentClient) Get(ctx context.Context, token string, id int64) domain.Result[domain.Document] {
	return call[domain.Document](ctx, c.http, "document_get", http.MethodGet, "/documents/"+itoa(id), token, nil)
}

// Versions returns a document's version history.
func (c *DocumentClient) Versions(ctx context.Context, token string, id int64) domain.Result[[]domain.DocumentVersion] {
	path := "/documents/" + itoa(id) + "/versions"
	return call[[]domain.DocumentVersion](ctx, c.http, "document_versions", http.MethodGet, path, token, nil)
}

// Upload sends content as a new document. meta is sent as extra form fields.
func (c *DocumentClient) Upload(ctx context.Context, token, fileName string, content io.Reader, meta map[string]string) domain.Result[domain.Document] {
	var doc domain.Document
	file := Upload{Field: "file", FileName: fileName, Content: content}
	if err := c.http.CallMultipart(ctx, "document_upload", "/documents/upload", token, meta, file, &doc); err != nil {
		return domain.Fail[domain.Document](err)
	}
	return domain.Ok(doc)
}

// RiskClient wraps the /risk-analysis endpoints.
type RiskClient struct {
	http *HTTPClient
}

// NewRiskClient creates a RiskClient.
func NewRiskClient(c *HTTPClient) *RiskClient {
	return &RiskClient{http: c}
}

// Organization returns the organization-wide risk score.
func (c *RiskClient) Organization(ctx context.Context, token string) domain.Result[domain.RiskScore] {
	return call[domain.RiskScore](ctx, c.http, "risk_organization", http.MethodGet, "/risk-analysis/organization", token, nil)
}

// Compliance returns the risk score of one compliance item.
func (c *RiskClient) Compliance(ctx context.Context, token string, id int64) domain.Result[domain.RiskScore] {
	path := "/risk-analysis/compliance/" + itoa(id)
	return call[domain.RiskScore](ctx, c.http, "risk_item", http.MethodGet, path, token, nil)
}

func call[T any](ctx context.Context, c *HTTPClient, op, method, path, token string, in any) domain.Result[T] {
	var out T
	if err := c.Call(ctx, op, method, path, token, in, &out); err != nil {
		return domain.Fail[T](err)
	}
	return domain.Ok(out)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
