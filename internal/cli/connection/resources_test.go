package connection

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

func TestManager_Routes(t *testing.T) {
	type hit struct{ method, uri string }
	var hits []hit
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, hit{r.Method, r.URL.RequestURI()})
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("%s missing bearer", r.URL.Path)
		}
		switch {
		case r.URL.Path == "/compliance" && r.Method == http.MethodGet,
			r.URL.Path == "/compliance/deadlines",
			r.URL.Path == "/documents",
			strings.HasSuffix(r.URL.Path, "/versions"):
			_, _ = io.WriteString(w, `[]`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	})
	m := NewManager(c)
	ctx := context.Background()

	checks := []struct {
		name string
		ok   bool
	}{
		{"compliance list", m.Compliance.List(ctx, "tok", ComplianceFilter{Status: "PENDING"}).OK},
		{"compliance get", m.Compliance.Get(ctx, "tok", 4).OK},
		{"compliance create", m.Compliance.Create(ctx, "tok", domain.ComplianceInput{Title: "GDPR"}).OK},
		{"compliance delete", m.Compliance.Delete(ctx, "tok", 4).OK},
		{"compliance stats", m.Compliance.Stats(ctx, "tok").OK},
		{"compliance deadlines", m.Compliance.Deadlines(ctx, "tok", 14).OK},
		{"document list", m.Documents.List(ctx, "tok").OK},
		{"document get", m.Documents.Get(ctx, "tok", 9).OK},
		{"document versions", m.Documents.Versions(ctx, "tok", 9).OK},
		{"document upload", m.Documents.Upload(ctx, "tok", "a.txt", strings.NewReader("a"), nil).OK},
		{"risk organization", m.Risk.Organization(ctx, "tok").OK},
		{"risk item", m.Risk.Compliance(ctx, "tok", 4).OK},
	}
	for _, chk := range checks {
		if !chk.ok {
			t.Errorf("%s failed", chk.name)
		}
	}

	want := []hit{
		{http.MethodGet, "/compliance?status=PENDING"},
		{http.MethodGet, "/compliance/4"},
		{http.MethodPost, "/compliance"},
		{http.MethodDelete, "/compliance/4"},
		{http.MethodGet, "/compliance/stats"},
		{http.MethodGet, "/compliance/deadlines?days=14"},
		{http.MethodGet, "/documents"},
		{http.MethodGet, "/documents/9"},
		{http.MethodGet, "/documents/9/versions"},
		{http.MethodPost, "/documents/upload"},
		{http.MethodGet, "/risk-analysis/organization"},
		{http.MethodGet, "/risk-analysis/compliance/4"},
	}
	if len(hits) != len(want) {
		t.Fatalf("hits = %v", hits)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %v, want %v", i, hits[i], want[i])
		}
	}
}

func TestComplianceFilterQuery(t *testing.T) {
	tests := []struct {
		f    ComplianceFilter
		want string
	}{
		{ComplianceFilter{}, ""},
		{ComplianceFilter{Status: "OVERDUE"}, "?status=OVERDUE"},
		{ComplianceFilter{AreaID: "gdpr", Priority: "HIGH"}, "?areaId=gdpr&priority=HIGH"},
	}
	for _, tt := range tests {
		if got := tt.f.query(); got != tt.want {
			t.Errorf("query(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestComplianceList_Decodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"SOX audit","status":"PENDING","riskScore":0.4}]`)
	})
	res := NewComplianceClient(c).List(context.Background(), "tok", ComplianceFilter{})
	if !res.OK || len(res.Value) != 1 || res.Value[0].Title != "SOX audit" {
		t.Errorf("List() = %+v", res)
	}
}
