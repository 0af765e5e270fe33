package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/atelier/console-backend/internal/chatstate"
)

// Frame is the wire envelope for every gateway event.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Wire frame types.
const (
	frameSessions = "sessions"
	frameChunk    = "chunk"
	frameFinal    = "final"
	frameHistory  = "history"
	frameStatus   = "status"
	frameUsage    = "usage"

	frameSend = "send" // outbound only
)

// ErrUnknownFrame marks frame types this client does not understand; the
// read loop logs and drops them.
var ErrUnknownFrame = fmt.Errorf("gateway: unknown frame type")

type sessionsPayload struct {
	Sessions []chatstate.Session `json:"sessions"`
}

type chunkPayload struct {
	Session   string `json:"session,omitempty"`
	ID        string `json:"id"`
	Content   string `json:"content"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

type historyPayload struct {
	Session  string              `json:"session"`
	Messages []chatstate.Message `json:"messages"`
}

type sendPayload struct {
	Session string `json:"session"`
	Content string `json:"content"`
}

// DecodeFrame translates one wire frame into a store event. Unknown types
// return ErrUnknownFrame; malformed payloads return the decode error. In
// both cases the caller drops the frame and keeps reading.
func DecodeFrame(data []byte) (chatstate.Event, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("gateway: decode frame: %w", err)
	}

	switch f.Type {
	case frameSessions:
		var p sessionsPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("gateway: decode sessions: %w", err)
		}
		return chatstate.SessionsUpdated{Sessions: p.Sessions}, nil

	case frameChunk, frameFinal:
		var p chunkPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("gateway: decode %s: %w", f.Type, err)
		}
		media := chatstate.Media{URL: p.MediaURL, Type: p.MediaType}
		if f.Type == frameChunk {
			return chatstate.ChunkReceived{SessionKey: p.Session, ID: p.ID, Content: p.Content, Media: media}, nil
		}
		return chatstate.Finalized{SessionKey: p.Session, ID: p.ID, Content: p.Content, Media: media}, nil

	case frameHistory:
		var p historyPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("gateway: decode history: %w", err)
		}
		return chatstate.HistoryReplaced{SessionKey: p.Session, Messages: p.Messages}, nil

	case frameStatus:
		var p chatstate.Status
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("gateway: decode status: %w", err)
		}
		return chatstate.ConnectionChanged{Status: p}, nil

	case frameUsage:
		var p chatstate.TokenUsage
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("gateway: decode usage: %w", err)
		}
		return chatstate.UsageUpdated{Usage: p}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
}

func encodeSend(session, content string) ([]byte, error) {
	payload, err := json.Marshal(sendPayload{Session: session, Content: content})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: frameSend, Payload: payload})
}
