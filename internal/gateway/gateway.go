// Package gateway is the narrow contract against the external card
// processor: create a hosted checkout session, look one up again, and verify
// inbound webhook signatures. Nothing else about the provider is modeled.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable wraps session-creation failures. The purchase stays pending
// and the user can retry.
var ErrUnavailable = errors.New("payment gateway unavailable")

// ErrInvalidSignature rejects webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SessionLine is one display line of the hosted checkout page. UnitAmount is
// in minor currency units (cents).
type SessionLine struct {
	Name       string
	Quantity   int64
	UnitAmount int64
	Currency   string
}

type CreateSessionInput struct {
	Lines             []SessionLine
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

type Session struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ClientReferenceID string `json:"client_reference_id"`
	PaymentStatus     string `json:"payment_status"`
}

type Client interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

// Error carries the provider's failure message alongside ErrUnavailable.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return ErrUnavailable }
