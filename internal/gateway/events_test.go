package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/console-backend/internal/chatstate"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name string
		data string
		want chatstate.Event
	}{
		{
			name: "sessions",
			data: `{"type":"sessions","payload":{"sessions":[{"key":"main","label":"Assistant","unread":2,"kind":"primary"}]}}`,
			want: chatstate.SessionsUpdated{Sessions: []chatstate.Session{
				{Key: "main", Label: "Assistant", Unread: 2, Kind: "primary"},
			}},
		},
		{
			name: "chunk for the active session",
			data: `{"type":"chunk","payload":{"id":"m1","content":"Hel"}}`,
			want: chatstate.ChunkReceived{ID: "m1", Content: "Hel"},
		},
		{
			name: "chunk for a background session with media",
			data: `{"type":"chunk","payload":{"session":"s1","id":"m2","content":"look","mediaUrl":"https://cdn/x.png","mediaType":"image/png"}}`,
			want: chatstate.ChunkReceived{
				SessionKey: "s1", ID: "m2", Content: "look",
				Media: chatstate.Media{URL: "https://cdn/x.png", Type: "image/png"},
			},
		},
		{
			name: "final without content",
			data: `{"type":"final","payload":{"id":"m1"}}`,
			want: chatstate.Finalized{ID: "m1"},
		},
		{
			name: "status",
			data: `{"type":"status","payload":{"connected":false,"connecting":true}}`,
			want: chatstate.ConnectionChanged{Status: chatstate.Status{Connecting: true}},
		},
		{
			name: "usage",
			data: `{"type":"usage","payload":{"contextTokens":1024,"maxTokens":8192,"percentage":12.5,"compactions":3}}`,
			want: chatstate.UsageUpdated{Usage: chatstate.TokenUsage{
				ContextTokens: 1024, MaxTokens: 8192, Percentage: 12.5, Compactions: 3,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeFrame([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestDecodeFrame_History(t *testing.T) {
	data := `{"type":"history","payload":{"session":"s1","messages":[{"id":"h1","role":"user","content":"hi"}]}}`

	ev, err := DecodeFrame([]byte(data))
	require.NoError(t, err)

	hist, ok := ev.(chatstate.HistoryReplaced)
	require.True(t, ok)
	assert.Equal(t, "s1", hist.SessionKey)
	require.Len(t, hist.Messages, 1)
	assert.Equal(t, chatstate.RoleUser, hist.Messages[0].Role)
}

func TestDecodeFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown type", data: `{"type":"telemetry","payload":{}}`},
		{name: "not json", data: `chunk m1`},
		{name: "payload shape mismatch", data: `{"type":"sessions","payload":{"sessions":"nope"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeFrame([]byte(tt.data))
			assert.Error(t, err)
			assert.Nil(t, ev)
		})
	}
}

func TestDecodeFrame_UnknownFrameSentinel(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"type":"telemetry","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestEncodeSend_RoundTripsThroughFrame(t *testing.T) {
	data, err := encodeSend("s1", "hello there")
	require.NoError(t, err)

	// The gateway sees a plain frame; decoding it back here just pins the
	// envelope shape.
	assert.JSONEq(t, `{"type":"send","payload":{"session":"s1","content":"hello there"}}`, string(data))
}
