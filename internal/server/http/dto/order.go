package dto

import "time"

// ConnectRequest carries external service credentials for a tenant.
type ConnectRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	ExpiresIn    int    `json:"expires_in" binding:"required"`
}

// SubmitOrderRequest is the draft purchase order to push to the external
// service.
type SubmitOrderRequest struct {
	SupplierID            int64                `json:"supplier_id"`
	SupplierExternalID    int64                `json:"supplier_external_id"`
	IssueDate             time.Time            `json:"issue_date" binding:"required"`
	ExpectedDate          *time.Time           `json:"expected_date,omitempty"`
	Discount              float64              `json:"discount,omitempty"`
	Freight               float64              `json:"freight,omitempty"`
	ICMSTax               float64              `json:"icms_tax,omitempty"`
	FreightResponsibility string               `json:"freight_responsibility,omitempty"`
	Carrier               string               `json:"carrier,omitempty"`
	GrossWeight           *float64             `json:"gross_weight,omitempty"`
	Volumes               *int                 `json:"volumes,omitempty"`
	Reference             string               `json:"reference,omitempty"`
	Notes                 string               `json:"notes,omitempty"`
	InternalNotes         string               `json:"internal_notes,omitempty"`
	Lines                 []OrderLineRequest   `json:"lines" binding:"required"`
	Installments          []InstallmentRequest `json:"installments,omitempty"`
}

// OrderLineRequest is one item of a submitted order.
type OrderLineRequest struct {
	ProductID         *int64  `json:"product_id,omitempty"`
	ExternalProductID *int64  `json:"external_product_id,omitempty"`
	SupplierCode      string  `json:"supplier_code,omitempty"`
	Description       string  `json:"description"`
	Unit              string  `json:"unit,omitempty"`
	UnitPrice         float64 `json:"unit_price"`
	Quantity          float64 `json:"quantity"`
	IPIRate           float64 `json:"ipi_rate,omitempty"`
}

// InstallmentRequest is one payment slice of a submitted order.
type InstallmentRequest struct {
	Amount          float64   `json:"amount"`
	DueDate         time.Time `json:"due_date"`
	Note            string    `json:"note,omitempty"`
	PaymentMethodID *int64    `json:"payment_method_id,omitempty"`
}

// SubmitOrderResponse reports the identifiers assigned during submission.
type SubmitOrderResponse struct {
	LocalID    int64    `json:"local_id,omitempty"`
	ExternalID int64    `json:"external_id"`
	Number     int64    `json:"number"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OrderResponse is one mirrored purchase order.
type OrderResponse struct {
	ID         int64               `json:"id"`
	ExternalID *int64              `json:"external_id,omitempty"`
	Number     *int64              `json:"number,omitempty"`
	SupplierID int64               `json:"supplier_id"`
	Status     string              `json:"status"`
	Total      float64             `json:"total"`
	IssueDate  time.Time           `json:"issue_date"`
	CreatedAt  time.Time           `json:"created_at"`
	Lines      []OrderLineResponse `json:"lines,omitempty"`
}

// OrderLineResponse is one item of a mirrored order.
type OrderLineResponse struct {
	ID           int64   `json:"id"`
	ProductID    *int64  `json:"product_id,omitempty"`
	SupplierCode string  `json:"supplier_code,omitempty"`
	Description  string  `json:"description"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     float64 `json:"quantity"`
}
