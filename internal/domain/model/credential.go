package model

import "time"

// Credential holds the external service tokens stored for a tenant.
type Credential struct {
	TenantID     int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// PendingReversal is a payable reversal that failed during submission and
// waits for the background worker to retry it.
type PendingReversal struct {
	ID         int64
	TenantID   int64
	ExternalID int64
	Attempts   int
	Status     ReversalStatus
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReversalStatus describes the lifecycle of a queued payable reversal.
type ReversalStatus string

const (
	ReversalPending    ReversalStatus = "PENDING"
	ReversalProcessing ReversalStatus = "PROCESSING"
	ReversalDone       ReversalStatus = "DONE"
	ReversalFailed     ReversalStatus = "FAILED"
)
