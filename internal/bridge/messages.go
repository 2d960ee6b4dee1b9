package bridge

import (
	"github.com/pandolabs/ecocart/internal/models"
)

// MessageType tags one request from the trigger surface.
type MessageType string

const (
	// MessageMount acknowledges only; kept as a historical hook point.
	MessageMount MessageType = "mount"
	// MessageScan waits for the cart DOM and returns a fresh snapshot.
	MessageScan MessageType = "scan"
	// MessageSuggest turns a previously scanned snapshot into coaching text.
	MessageSuggest MessageType = "suggest"
)

// Request is one typed message from the trigger surface.
type Request struct {
	Type  MessageType          `json:"type"`
	Model string               `json:"model,omitempty"`
	Cart  *models.CartSnapshot `json:"cart,omitempty"`
}

// Response is the uniform envelope: errors are values here, never faults
// crossing the message boundary.
type Response struct {
	OK    bool                 `json:"ok"`
	Error string               `json:"error,omitempty"`
	Data  *models.CartSnapshot `json:"data,omitempty"`
	Text  string               `json:"text,omitempty"`
}

func ack() Response {
	return Response{OK: true}
}

func fail(err error) Response {
	return Response{OK: false, Error: err.Error()}
}
