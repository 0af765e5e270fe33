package chatstate

import "time"

// DefaultMainKey is the session key of the primary assistant session when
// the configuration does not name one.
const DefaultMainKey = "main"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Attachment is a file attached to a message.
type Attachment struct {
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
	FileName string `json:"fileName,omitempty"`
}

// Media carries the optional media fields of a streaming chunk or finalize
// event. Empty fields are treated as "unchanged" when merged into a message.
type Media struct {
	URL  string `json:"mediaUrl,omitempty"`
	Type string `json:"mediaType,omitempty"`
}

// Message is one turn in a conversation.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	IsStreaming bool         `json:"isStreaming"`
	MediaURL    string       `json:"mediaUrl,omitempty"`
	MediaType   string       `json:"mediaType,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Session describes one conversational context as reported by the gateway:
// the main assistant session, a cron-triggered run, or a spawned sub-agent.
type Session struct {
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastTimestamp time.Time `json:"lastTimestamp"`
	Unread        int       `json:"unread,omitempty"`
	Kind          string    `json:"kind,omitempty"`
}

// Status mirrors the gateway link state. Connecting and Connected are never
// both true in anything the transport reports; the store does not enforce
// it, it just stores the latest report wholesale.
type Status struct {
	Connected  bool   `json:"connected"`
	Connecting bool   `json:"connecting"`
	Error      string `json:"error,omitempty"`
}

// TokenUsage is the context-window metric record, replaced wholesale on
// every update.
type TokenUsage struct {
	ContextTokens int     `json:"contextTokens"`
	MaxTokens     int     `json:"maxTokens"`
	Percentage    float64 `json:"percentage"`
	Compactions   int     `json:"compactions"`
}
