package domain

import (
	"errors"
	"time"
)

var (
	ErrPing                  = errors.New("webhook ping")
	ErrEmptyOrUnparseable    = errors.New("empty or unparseable body")
	ErrUnexpectedPayloadType = errors.New("unexpected payload type")
	ErrMissingSignature      = errors.New("missing webhook signature")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrStoreAppend           = errors.New("store append failed")
	ErrStoreRead             = errors.New("store read failed")
	ErrNotFound              = errors.New("order not found")
)

// Payload is a normalized webhook body.
type Payload map[string]any

type Destination struct {
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// OrderEvent is built once per accepted webhook call and never persisted as is.
type OrderEvent struct {
	OrderID      string      `json:"order_id"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	Destination  Destination `json:"destination"`
	CustomerName string      `json:"customer_name"`
	Service      string      `json:"service"`
	Total        string      `json:"total"`
	Token        string      `json:"token"`
	TrackingLink string      `json:"tracking_link"`
}
