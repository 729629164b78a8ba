// Package webhook implements the inbound SMS relay pipeline: payload
// extraction, rule matching, Telegram delivery dispatch, and the HTTP
// ingress tying them together.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON indicates the request body could not be decoded at all.
	ErrInvalidJSON = errors.New("invalid JSON payload")
	// ErrUnknownShape indicates a decodable document that carries the
	// required fields at none of the accepted locations.
	ErrUnknownShape = errors.New("unrecognized payload shape")
)

// NotSpecified is the marker used when an optional payload field is absent.
const NotSpecified = "Не указан"

// InboundEvent is the canonical form of an inbound SMS webhook payload.
type InboundEvent struct {
	// CallerID is the claimed sender of the SMS.
	CallerID string
	// CalledNumber is the service number the SMS arrived on (caller_did).
	CalledNumber string
	// Text is the message body.
	Text string
	// CallerName is optional sender metadata; NotSpecified when absent.
	CallerName string
}

// eventFields mirrors the provider's field set at one nesting level.
// Pointers distinguish absent fields from empty ones.
type eventFields struct {
	CallerID     *string `json:"caller_id"`
	CalledNumber *string `json:"caller_did"`
	Text         *string `json:"text"`
	CallerName   *string `json:"caller_name"`
}

// complete reports whether all required provider fields are present.
func (f *eventFields) complete() bool {
	return f != nil && f.CallerID != nil && f.CalledNumber != nil && f.Text != nil
}

func (f *eventFields) toEvent() *InboundEvent {
	event := &InboundEvent{
		CallerID:     *f.CallerID,
		CalledNumber: *f.CalledNumber,
		Text:         *f.Text,
		CallerName:   NotSpecified,
	}
	if f.CallerName != nil {
		event.CallerName = *f.CallerName
	}
	return event
}

// envelope is the tagged union of the payload shapes the provider is known
// to produce: fields at the document root, nested under "result", or
// nested under "data", depending on provider version and configuration.
type envelope struct {
	eventFields
	Result *eventFields `json:"result"`
	Data   *eventFields `json:"data"`
}

// ExtractEvent decodes body and extracts the canonical inbound event.
// Candidate locations are probed in fixed precedence order (root, then
// "result", then "data"); the first one carrying the full required field
// set wins. Returns ErrInvalidJSON for undecodable bodies and
// ErrUnknownShape when no candidate qualifies.
func ExtractEvent(body []byte) (*InboundEvent, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, err)
	}

	for _, candidate := range []*eventFields{&env.eventFields, env.Result, env.Data} {
		if candidate.complete() {
			return candidate.toEvent(), nil
		}
	}

	return nil, ErrUnknownShape
}
