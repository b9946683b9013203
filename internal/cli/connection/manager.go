package connection

// Manager bundles the typed clients that share one HTTPClient.
type Manager struct {
	HTTP       *HTTPClient
	Auth       *AuthClient
	Compliance *ComplianceClient
	Documents  *DocumentClient
	Risk       *RiskClient
}

// NewManager builds every typed client over c.
func NewManager(c *HTTPClient) *Manager {
	return &Manager{
		HTTP:       c,
		Auth:       NewAuthClient(c),
		Compliance: NewComplianceClient(c),
		Documents:  NewDocumentClient(c),
		Risk:       NewRiskClient(c),
	}
}

// BaseURL returns the backend base URL, which is also the token store origin.
func (m *Manager) BaseURL() string {
	return m.HTTP.BaseURL()
}
