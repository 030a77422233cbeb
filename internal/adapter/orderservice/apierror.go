package orderservice

import (
	"encoding/json"
	"strings"
)

// APIError is a client error returned by the external service, parsed as far
// as the response allows.
type APIError struct {
	Status      int
	Fields      []string
	Message     string
	Description string
	Raw         string
}

// Error prefers the structured message, then the description, then the raw
// body, then a generic fallback.
func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Description != "":
		return e.Description
	case e.Raw != "":
		return e.Raw
	default:
		return "order service request rejected"
	}
}

// RequiresManualNumber reports whether the service demanded a caller-supplied
// order number through a field-level error.
func (e *APIError) RequiresManualNumber() bool {
	for _, field := range e.Fields {
		if strings.EqualFold(field, "numero") || strings.EqualFold(field, "number") {
			return true
		}
	}
	return false
}

// IsDuplicateNumber matches the vendor's "record already exists with this
// number" message. The vendor exposes no structured code for this, only
// pt-BR text, so detection is a substring match on the parsed message.
func (e *APIError) IsDuplicateNumber() bool {
	text := strings.ToLower(e.Message + " " + e.Description + " " + e.Raw)
	if !strings.Contains(text, "existe") {
		return false
	}
	return strings.Contains(text, "número") || strings.Contains(text, "numero")
}

type apiErrorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Fields      []struct {
		Element string `json:"element"`
	} `json:"fields"`
}

type apiErrorEnvelope struct {
	Error *apiErrorBody `json:"error"`
}

// parseAPIError degrades gracefully: structured error body first, raw text
// second, generic string last.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		fill(apiErr, envelope.Error)
		return apiErr
	}

	var direct apiErrorBody
	if err := json.Unmarshal(body, &direct); err == nil && (direct.Message != "" || direct.Description != "" || len(direct.Fields) > 0) {
		fill(apiErr, &direct)
		return apiErr
	}

	apiErr.Raw = strings.TrimSpace(string(body))
	return apiErr
}

func fill(apiErr *APIError, body *apiErrorBody) {
	apiErr.Message = body.Message
	apiErr.Description = body.Description
	for _, field := range body.Fields {
		if field.Element != "" {
			apiErr.Fields = append(apiErr.Fields, field.Element)
		}
	}
}
