package notify

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Only orderId is checked: it must be present and truthy. Every other field
// is passed through whatever its type.
const orderSchemaJSON = `{
	"type": "object",
	"required": ["orderId"],
	"properties": {
		"orderId": {"not": {"enum": [null, false, 0, ""]}}
	}
}`

const promotionSchemaJSON = `{
	"type": "object",
	"required": ["promotions"],
	"properties": {
		"promotions": {"type": "array", "minItems": 1}
	}
}`

var (
	orderSchema     = mustSchema(orderSchemaJSON)
	promotionSchema = mustSchema(promotionSchemaJSON)
)

// OrderRequest is the body accepted by the new-order ingestion route.
type OrderRequest struct {
	OrderID       json.RawMessage `json:"orderId"`
	ContactPhone  Value           `json:"contactPhone"`
	OrderTotal    Value           `json:"orderTotal"`
	CustomerName  Value           `json:"customerName"`
	CustomerEmail Value           `json:"customerEmail"`
	UserID        json.RawMessage `json:"userId"`
	Items         json.RawMessage `json:"items"`
	Status        Value           `json:"status"`
}

// PromotionRequest is the body accepted by the expiring-promotions route.
type PromotionRequest struct {
	Promotions []PromotionSummary `json:"promotions"`
}

func DecodeOrderRequest(body []byte) (*OrderRequest, error) {
	if err := validate(orderSchema, body); err != nil {
		return nil, err
	}
	var req OrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &req, nil
}

func DecodePromotionRequest(body []byte) (*PromotionRequest, error) {
	if err := validate(promotionSchema, body); err != nil {
		return nil, err
	}
	var raw struct {
		Promotions []json.RawMessage `json:"promotions"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	// Entries that are not objects still count; they map to an empty summary.
	req := &PromotionRequest{Promotions: make([]PromotionSummary, len(raw.Promotions))}
	for i, item := range raw.Promotions {
		var p PromotionSummary
		if err := json.Unmarshal(item, &p); err == nil {
			req.Promotions[i] = p
		}
	}
	return req, nil
}

func validate(schema *gojsonschema.Schema, body []byte) error {
	if !json.Valid(body) {
		return ErrMalformedBody
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		field := re.Field()
		// Missing properties are reported against the parent object.
		if re.Type() == "required" {
			if prop, ok := re.Details()["property"].(string); ok {
				field = prop
			}
		}
		verr.Fields = append(verr.Fields, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s: %s", field, re.Description()),
		})
	}
	return verr
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("notify: compiling schema: %v", err))
	}
	return s
}
