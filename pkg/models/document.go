package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceDocument is a stored certificate or report tied to a property
// (fire safety, SDA enrolment, insurance). ExpiryDate drives renewal alerts.
type ComplianceDocument struct {
	ID           uuid.UUID  `json:"id"`
	OrgID        uuid.UUID  `json:"org_id"`
	PropertyID   uuid.UUID  `json:"property_id"`
	DocumentType string     `json:"document_type"`
	Title        string     `json:"title"`
	StorageKey   string     `json:"storage_key"`
	ContentType  string     `json:"content_type"`
	IssueDate    *time.Time `json:"issue_date,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ExpiresWithin reports whether the document expires within the given number
// of days from now. Documents without an expiry date never expire.
func (d *ComplianceDocument) ExpiresWithin(now time.Time, days int) bool {
	if d.ExpiryDate == nil {
		return false
	}
	cutoff := now.AddDate(0, 0, days)
	return !d.ExpiryDate.After(cutoff)
}
