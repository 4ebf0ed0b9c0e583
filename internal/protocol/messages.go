// Package protocol coordinates a capture between two asynchronous peers: the
// orchestrator, which owns the request lifecycle, and the executor, which
// lives in the page's execution context and may not be installed yet when
// the orchestrator first speaks.
package protocol

import (
	"github.com/sells-group/capture-cli/internal/model"
)

// MessageType discriminates the wire messages.
type MessageType string

const (
	// MsgPing is the orchestrator's liveness probe.
	MsgPing MessageType = "PING"
	// MsgPong acknowledges a ping.
	MsgPong MessageType = "PONG"
	// MsgRunExtraction dispatches one extraction, tagged with a request ID.
	MsgRunExtraction MessageType = "RUN_EXTRACTION"
	// MsgExtractionResult carries a successful extraction payload.
	MsgExtractionResult MessageType = "EXTRACTION_RESULT"
	// MsgExtractionError carries a failed extraction's error.
	MsgExtractionError MessageType = "EXTRACTION_ERROR"
)

// Payload is the extraction result on the wire: the captured record plus any
// related partial records from the same page.
type Payload struct {
	model.Record
	Related []model.RelatedRecord `json:"related,omitempty"`
}

// WireError is a remote extraction failure.
type WireError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Message is one protocol frame. RequestID correlates a RUN_EXTRACTION with
// its eventual result; responses with a stale or unknown RequestID are
// ignored, never treated as completion.
type Message struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
	Payload   *Payload    `json:"payload,omitempty"`
	Error     *WireError  `json:"error,omitempty"`
}
