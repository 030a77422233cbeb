package orderservice

// Wire types for the external service's create-order endpoint. Optional
// sections (discount, tax, shipping) are pointers so they can be omitted
// entirely instead of sent zeroed.

// OrderPayload is the vendor schema for order creation. Number is only set
// when the service demands manual numbering.
type OrderPayload struct {
	Date                   string               `json:"date"`
	Number                 *int64               `json:"number,omitempty"`
	Supplier               EntityRef            `json:"supplier"`
	Status                 StatusRef            `json:"status"`
	Items                  []ItemPayload        `json:"items"`
	ExpectedDate           string               `json:"expected_date,omitempty"`
	PurchaseOrderReference string               `json:"purchase_order_reference,omitempty"`
	Notes                  string               `json:"notes,omitempty"`
	InternalNotes          string               `json:"internal_notes,omitempty"`
	Discount               *DiscountPayload     `json:"discount,omitempty"`
	Tax                    *TaxPayload          `json:"tax,omitempty"`
	Shipping               *ShippingPayload     `json:"shipping,omitempty"`
	Installments           []InstallmentPayload `json:"installments,omitempty"`
}

type EntityRef struct {
	ID int64 `json:"id"`
}

type StatusRef struct {
	Value int `json:"value"`
}

type ItemPayload struct {
	Description  string      `json:"description"`
	Unit         string      `json:"unit"`
	UnitPrice    float64     `json:"unit_price"`
	Quantity     float64     `json:"quantity"`
	SupplierCode string      `json:"supplier_code,omitempty"`
	Product      *ProductRef `json:"product,omitempty"`
	IPIRate      float64     `json:"ipi_rate"`
}

type ProductRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code,omitempty"`
}

type DiscountPayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type TaxPayload struct {
	TotalICMS float64 `json:"total_icms"`
}

// ShippingPayload carries freight details. Value stays nil for modalities
// where freight is bundled in the price or does not apply.
type ShippingPayload struct {
	Value       *float64 `json:"value,omitempty"`
	Carrier     string   `json:"carrier,omitempty"`
	PayerCode   *int     `json:"payer_code,omitempty"`
	GrossWeight *float64 `json:"gross_weight,omitempty"`
	Volumes     *int     `json:"volumes,omitempty"`
}

type InstallmentPayload struct {
	Value         float64    `json:"value"`
	DueDate       string     `json:"due_date"`
	Note          string     `json:"note,omitempty"`
	PaymentMethod *EntityRef `json:"payment_method,omitempty"`
}
