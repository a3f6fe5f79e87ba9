package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message represents a Kafka message with metadata.
type Message struct {
	Key       string            // partition key (booking ID)
	Value     []byte            // JSON-encoded payload
	Headers   map[string]string
	Topic     string // set by Kafka on consume
	Partition int
	Offset    int64
	Timestamp time.Time
}

// Header keys shared between the server and the notifier.
const (
	HeaderEventID    = "event-id"
	HeaderEventType  = "event-type"
	HeaderSource     = "source"
	HeaderTimestamp  = "timestamp"
	HeaderRetryCount = "retry-count"
)

// MessageBuilder provides a fluent interface for building messages.
type MessageBuilder struct {
	msg Message
	err error
}

// NewMessage creates a new MessageBuilder.
func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers:   make(map[string]string),
			Timestamp: time.Now(),
		},
	}
}

// WithKey sets the message key used for partition routing.
func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithValue JSON-encodes value as the message payload.
func (mb *MessageBuilder) WithValue(value interface{}) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		mb.err = err
		return mb
	}
	mb.msg.Value = data
	return mb
}

// WithEventType sets the event type header.
func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	mb.msg.Headers[HeaderEventType] = eventType
	return mb
}

// WithSource sets the source service header.
func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	mb.msg.Headers[HeaderSource] = source
	return mb
}

// WithHeader adds a custom header.
func (mb *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	mb.msg.Headers[key] = value
	return mb
}

// Build returns the constructed message. An event ID and timestamp
// header are filled in when absent.
func (mb *MessageBuilder) Build() (Message, error) {
	if mb.err != nil {
		return Message{}, mb.err
	}
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.New().String()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339)
	}
	return mb.msg, nil
}

// MessageHandler is the function signature for processing messages.
// Return nil for successful processing, an error for failure.
type MessageHandler func(ctx context.Context, msg Message) error

// DecodeValue decodes the message value into the provided struct.
func (m *Message) DecodeValue(v interface{}) error {
	return json.Unmarshal(m.Value, v)
}

// GetHeader retrieves a header value.
func (m *Message) GetHeader(key string) (string, bool) {
	value, exists := m.Headers[key]
	return value, exists
}

// GetEventID returns the event ID header.
func (m *Message) GetEventID() string {
	return m.Headers[HeaderEventID]
}

// GetEventType returns the event type header.
func (m *Message) GetEventType() string {
	return m.Headers[HeaderEventType]
}
