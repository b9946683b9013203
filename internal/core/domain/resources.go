package domain

import "time"

// Compliance is a compliance item as returned by the backend.
type Compliance struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" table:"wide"`
	Status      string     `json:"status" yaml:"status"`
	AreaID      string     `json:"areaId,omitempty" yaml:"area_id,omitempty" table:"wide"`
	AreaName    string     `json:"areaName,omitempty" yaml:"area_name,omitempty"`
	Priority    string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty" yaml:"assigned_to,omitempty" table:"wide"`
	RiskScore   float64    `json:"riskScore,omitempty" yaml:"risk_score,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	DocumentIDs []int64    `json:"documentIds,omitempty" yaml:"document_ids,omitempty" table:"-"`
}

// ComplianceInput is the body for creating a compliance item.
type ComplianceInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AreaID      string     `json:"areaId,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Validate performs the compliance form checks.
func (in ComplianceInput) Validate() error {
	if in.Title == "" {
		return ErrValidation.WithDetails("title is required")
	}
	return nil
}

// ComplianceStats summarizes compliance items by status.
type ComplianceStats struct {
	Total        int `json:"total" yaml:"total"`
	Compliant    int `json:"compliant" yaml:"compliant"`
	Pending      int `json:"pending" yaml:"pending"`
	Overdue      int `json:"overdue" yaml:"overdue"`
	AtRisk       int `json:"atRisk" yaml:"at_risk"`
	DueThisMonth int `json:"dueThisMonth,omitempty" yaml:"due_this_month,omitempty"`
}

// Document is a stored document's metadata.
type Document struct {
	ID           int64     `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	FileName     string    `json:"fileName" yaml:"file_name"`
	ContentType  string    `json:"contentType,omitempty" yaml:"content_type,omitempty" table:"wide"`
	Size         int64     `json:"fileSize,omitempty" yaml:"file_size,omitempty"`
	Status       string    `json:"status" yaml:"status"`
	Version      int       `json:"version,omitempty" yaml:"version,omitempty"`
	ComplianceID int64     `json:"complianceId,omitempty" yaml:"compliance_id,omitempty" table:"wide"`
	UploadedAt   time.Time `json:"uploadedAt,omitempty" yaml:"uploaded_at,omitempty"`
}

// DocumentVersion is one entry of a document's version history.
type DocumentVersion struct {
	Version    int       `json:"version" yaml:"version"`
	FileName   string    `json:"fileName" yaml:"file_name"`
	UploadedBy string    `json:"uploadedBy,omitempty" yaml:"uploaded_by,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploaded_at"`
}

// RiskScore is an AI risk assessment result for an organization or item.
type RiskScore struct {
	Score       float64      `json:"score" yaml:"score"`
	Level       string       `json:"level" yaml:"level"`
	Factors     []RiskFactor `json:"factors,omitempty" yaml:"factors,omitempty" table:"-"`
	AssessedAt  time.Time    `json:"assessedAt,omitempty" yaml:"assessed_at,omitempty"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty" table:"wide"`
}

// RiskFactor is one contributor to a risk score.
type RiskFactor struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
	Impact string  `json:"impact,omitempty" yaml:"impact,omitempty"`
}
