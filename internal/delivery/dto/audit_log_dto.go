package dto

import "time"

// Response DTOs

// AuditEntryResponse is one change in the audit trail. Actor is null for
// changes made outside an authenticated request, such as the createuser command.
type AuditEntryResponse struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Record    AuditRecordRef `json:"record"`
	Actor     *UserResponse  `json:"actor"`
	Changes   *AuditChanges  `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type AuditRecordRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// AuditChanges holds the record as serialized before and after the change.
// Before is null on create, After is null on delete.
type AuditChanges struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// AuditTrailPage is one page of the trail, newest first. Pass NextBefore as
// ?before= to fetch the following page; it is null on the last page.
type AuditTrailPage struct {
	Results    []AuditEntryResponse `json:"results"`
	NextBefore *int64               `json:"next_before"`
}
