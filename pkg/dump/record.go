package dump

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPayload marks a message object that carries neither payload
// representation.
var ErrNoPayload = errors.New("message has no payload field")

// Properties is the allow-list of broker-meaningful message properties. Any
// other property coming off the management API is dropped on purpose.
type Properties struct {
	ContentType     string `json:"content_type,omitempty"`
	ContentEncoding string `json:"content_encoding,omitempty"`
	DeliveryMode    uint8  `json:"delivery_mode,omitempty"`
	Priority        uint8  `json:"priority,omitempty"`
	CorrelationID   string `json:"correlation_id,omitempty"`
	ReplyTo         string `json:"reply_to,omitempty"`
	Expiration      string `json:"expiration,omitempty"`
	MessageID       string `json:"message_id,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
	Type            string `json:"type,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	AppID           string `json:"app_id,omitempty"`
	ClusterID       string `json:"cluster_id,omitempty"`
}

// Record is one sampled message as persisted in a dump file. Exactly one of
// Payload or PayloadBytes is present; Payload is tagged by PayloadEncoding
// ("string" or "base64"), PayloadBytes is the older always-base64 field.
type Record struct {
	Properties      Properties             `json:"properties,omitempty"`
	Headers         map[string]interface{} `json:"headers,omitempty"`
	Payload         *string                `json:"payload,omitempty"`
	PayloadEncoding string                 `json:"payload_encoding,omitempty"`
	PayloadBytes    *string                `json:"payload_bytes,omitempty"`
}

// apiMessage is the wire shape of one management API /get message. Headers
// arrive nested inside properties.
type apiMessage struct {
	Payload         *string `json:"payload"`
	PayloadEncoding string  `json:"payload_encoding"`
	PayloadBytes    *string `json:"payload_bytes"`
	Properties      struct {
		Properties
		Headers map[string]interface{} `json:"headers"`
	} `json:"properties"`
}

// FromAPI decodes one management API message object into a Record, hoisting
// the nested headers table to the top level.
func FromAPI(raw json.RawMessage) (*Record, error) {
	var msg apiMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Payload == nil && msg.PayloadBytes == nil {
		return nil, ErrNoPayload
	}
	return &Record{
		Properties:      msg.Properties.Properties,
		Headers:         msg.Properties.Headers,
		Payload:         msg.Payload,
		PayloadEncoding: msg.PayloadEncoding,
		PayloadBytes:    msg.PayloadBytes,
	}, nil
}

// Body returns the decoded payload bytes.
func (r *Record) Body() ([]byte, error) {
	switch {
	case r.Payload != nil:
		if r.PayloadEncoding == "base64" {
			body, err := base64.StdEncoding.DecodeString(*r.Payload)
			if err != nil {
				return nil, fmt.Errorf("decoding payload: %w", err)
			}
			return body, nil
		}
		return []byte(*r.Payload), nil
	case r.PayloadBytes != nil:
		body, err := base64.StdEncoding.DecodeString(*r.PayloadBytes)
		if err != nil {
			return nil, fmt.Errorf("decoding payload_bytes: %w", err)
		}
		return body, nil
	default:
		return nil, ErrNoPayload
	}
}

// Fingerprint computes the identity of the logical message: the message id if
// set, else the hex SHA-256 of the payload bytes.
func (r *Record) Fingerprint() (string, error) {
	if r.Properties.MessageID != "" {
		return "id:" + r.Properties.MessageID, nil
	}
	body, err := r.Body()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return "sha:" + hex.EncodeToString(sum[:]), nil
}
