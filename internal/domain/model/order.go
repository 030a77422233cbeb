package model

import "time"

// NegotiationStatus describes where a purchase order sits in the
// buyer/supplier negotiation lifecycle.
type NegotiationStatus string

const (
	StatusDraft             NegotiationStatus = "DRAFT"
	StatusSentToSupplier    NegotiationStatus = "SENT_TO_SUPPLIER"
	StatusSuggestionPending NegotiationStatus = "SUGGESTION_PENDING"
	StatusAccepted          NegotiationStatus = "ACCEPTED"
	StatusRejected          NegotiationStatus = "REJECTED"
	StatusCanceled          NegotiationStatus = "CANCELED"
	StatusFinalized         NegotiationStatus = "FINALIZED"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s NegotiationStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusFinalized
}

// FreightResponsibility mirrors the freight modality encoding used by the
// external service: who pays shipping and whether it is priced separately.
type FreightResponsibility string

const (
	FreightCIF        FreightResponsibility = "CIF"
	FreightFOB        FreightResponsibility = "FOB"
	FreightThirdParty FreightResponsibility = "THIRD_PARTY"
	FreightOwnSender  FreightResponsibility = "OWN_SENDER"
	FreightOwnBuyer   FreightResponsibility = "OWN_BUYER"
	FreightNone       FreightResponsibility = "NO_FREIGHT"
)

// External status codes reported by the order service for an order.
const (
	ExternalStatusOpen      = 0
	ExternalStatusFinalized = 3
	ExternalStatusCanceled  = 4
)

// PurchaseOrder is the locally mirrored purchase order. ExternalID and Number
// stay nil until the order has been created on the external service and are
// never rewritten afterwards.
type PurchaseOrder struct {
	ID                    int64
	TenantID              int64
	ExternalID            *int64
	Number                *int64
	SupplierID            int64
	SupplierExternalID    int64
	Status                NegotiationStatus
	ExternalStatus        int
	ProductsSubtotal      float64
	Discount              float64
	Freight               float64
	ICMSTax               float64
	Total                 float64
	FreightResponsibility FreightResponsibility
	Carrier               string
	GrossWeight           *float64
	Volumes               *int
	IssueDate             time.Time
	ExpectedDate          *time.Time
	Reference             string
	Notes                 string
	InternalNotes         string
	CreatedBy             int64
	Origin                string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// OrderLine is a single item of a purchase order.
type OrderLine struct {
	ID                int64
	OrderID           int64
	ProductID         *int64
	ExternalProductID *int64
	SupplierCode      string
	Description       string
	Unit              string
	UnitPrice         float64
	Quantity          float64
	IPIRate           float64
}

// Installment is one payment slice of a purchase order.
type Installment struct {
	ID              int64
	OrderID         int64
	Amount          float64
	DueDate         time.Time
	Note            string
	PaymentMethodID *int64
}

// SubmitResult is what the caller gets back from a submission. Once the
// external create succeeded, ExternalID and Number are always populated even
// when later steps degraded into warnings.
type SubmitResult struct {
	LocalID    int64
	ExternalID int64
	Number     int64
	Warnings   []string
}

// LineRevision carries the recomputed quantity and price applied to an order
// line when a supplier suggestion is accepted.
type LineRevision struct {
	LineID    int64
	Quantity  float64
	UnitPrice float64
}

// OrderTotals are the order-level monetary fields rewritten on acceptance.
type OrderTotals struct {
	ProductsSubtotal float64
	Discount         float64
	Total            float64
}
