package domain

import "time"

// AuditFields records who created or last changed a stored document.
// CreatedBy and LastUpdatedBy hold the authenticated principal.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
