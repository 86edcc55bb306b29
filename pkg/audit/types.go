package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// EventTypeAuthLogin records a bearer token issued for a verified user
	EventTypeAuthLogin EventType = "auth.login"

	// EventTypeAuthLoginFailed records a token request that was refused
	EventTypeAuthLoginFailed EventType = "auth.login_failed"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	// Core fields
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information, present once the launch payload is verified
	Subject  string `json:"subject,omitempty"`
	Username string `json:"username,omitempty"`

	// Request context
	IPAddress  string `json:"ip_address,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	// Additional details
	Reason   string                 `json:"reason,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AuthAttempt describes the result of one token request
type AuthAttempt struct {
	Subject    string
	Username   string
	Status     EventStatus
	StatusCode int
	// Reason is a short machine readable outcome, e.g. "invalid_signature"
	Reason  string
	Message string
}

// ToJSON converts the audit event to JSON
func (e *AuditEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*AuditEvent, error) {
	var event AuditEvent
	err := json.Unmarshal(data, &event)
	return &event, err
}
