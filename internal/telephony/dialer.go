package telephony

import (
	"context"
	"errors"
)

// Dialer defines the provider-agnostic outbound-call interface used by
// business logic.
//
// Rules:
// - No provider SDK calls outside telephony adapters.
// - Keep request/response types provider-agnostic; the provider's raw call
//   identifier is surfaced only as ProviderCallID.
type Dialer interface {
	Name() string
	HealthCheck(ctx context.Context) error

	// PlaceCall starts an outbound call. The provider delivers lifecycle
	// events to StatusCallbackURL; CallID is echoed back on every callback
	// so webhooks can be correlated without provider-id lookups.
	PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error)
}

// Classification of dial failures. Transient transport problems are worth a
// bounded retry; explicit provider rejections are not.
var (
	ErrTransport = errors.New("telephony: transport error")
	ErrRejected  = errors.New("telephony: provider rejected call")
)

type PlaceCallRequest struct {
	// CallID is the internal call identifier, propagated on callbacks.
	CallID string `json:"call_id"`

	// To and From are E.164.
	To   string `json:"to"`
	From string `json:"from"`

	// StatusCallbackURL receives lifecycle webhooks (ringing/answered/hangup).
	StatusCallbackURL string `json:"status_callback_url"`

	// VoiceID is the synthesis persona pinned to this call.
	VoiceID string `json:"voice_id"`

	// Script is the personalized opening script for the AI agent.
	Script string `json:"script,omitempty"`
}

type PlaceCallResult struct {
	// ProviderCallID is the provider's unique identifier for this call.
	ProviderCallID string `json:"provider_call_id"`
}
