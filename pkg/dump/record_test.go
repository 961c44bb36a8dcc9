package dump

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestFromAPI(t *testing.T) {
	raw := json.RawMessage(`{
		"payload": "hello",
		"payload_encoding": "string",
		"properties": {
			"message_id": "m1",
			"content_type": "text/plain",
			"delivery_mode": 2,
			"headers": {"x-tenant": "a"},
			"unknown_prop": "dropped"
		},
		"routing_key": "orders",
		"redelivered": true
	}`)

	record, err := FromAPI(raw)
	require.NoError(t, err)

	require.NotNil(t, record.Payload)
	assert.Equal(t, "hello", *record.Payload)
	assert.Equal(t, "string", record.PayloadEncoding)
	assert.Nil(t, record.PayloadBytes)
	assert.Equal(t, "m1", record.Properties.MessageID)
	assert.Equal(t, "text/plain", record.Properties.ContentType)
	assert.Equal(t, uint8(2), record.Properties.DeliveryMode)
	assert.Equal(t, map[string]interface{}{"x-tenant": "a"}, record.Headers)

	// unknown properties never make it back out
	out, err := json.Marshal(record)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "unknown_prop")
}

func TestFromAPIMissingPayload(t *testing.T) {
	_, err := FromAPI(json.RawMessage(`{"properties": {"message_id": "m1"}}`))
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestBody(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		want    []byte
		wantErr bool
	}{
		{
			name:   "string payload",
			record: Record{Payload: strptr("hello"), PayloadEncoding: "string"},
			want:   []byte("hello"),
		},
		{
			name:   "base64 payload",
			record: Record{Payload: strptr("aGVsbG8="), PayloadEncoding: "base64"},
			want:   []byte("hello"),
		},
		{
			name:   "legacy payload_bytes",
			record: Record{PayloadBytes: strptr("aGVsbG8=")},
			want:   []byte("hello"),
		},
		{
			name:   "empty string payload",
			record: Record{Payload: strptr(""), PayloadEncoding: "string"},
			want:   []byte(""),
		},
		{
			name:    "invalid base64",
			record:  Record{Payload: strptr("%%%"), PayloadEncoding: "base64"},
			wantErr: true,
		},
		{
			name:    "no payload at all",
			record:  Record{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.record.Body()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestFingerprint(t *testing.T) {
	withID := Record{
		Properties: Properties{MessageID: "m1"},
		Payload:    strptr("one"), PayloadEncoding: "string",
	}
	sameIDOtherPayload := Record{
		Properties: Properties{MessageID: "m1"},
		Payload:    strptr("two"), PayloadEncoding: "string",
	}
	noID := Record{Payload: strptr("one"), PayloadEncoding: "string"}
	noIDLegacy := Record{PayloadBytes: strptr("b25l")} // "one"

	fp1, err := withID.Fingerprint()
	require.NoError(t, err)
	fp2, err := sameIDOtherPayload.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, "id:m1", fp1)
	assert.Equal(t, fp1, fp2, "message id wins over payload differences")

	fp3, err := noID.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
	assert.Contains(t, fp3, "sha:")

	fp4, err := noIDLegacy.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp3, fp4, "fingerprint is representation independent")
}

func TestFingerprintDistinctPayloads(t *testing.T) {
	payloads := []string{"a", "b", "ab", "ba", "", "aa", "hello", "hellp"}
	seen := make(map[string]string)
	for _, payload := range payloads {
		record := Record{Payload: strptr(payload), PayloadEncoding: "string"}
		fp, err := record.Fingerprint()
		require.NoError(t, err)
		previous, dup := seen[fp]
		assert.False(t, dup, "payloads %q and %q collided", previous, payload)
		seen[fp] = payload
	}
}

func TestFingerprintNoPayload(t *testing.T) {
	record := Record{}
	_, err := record.Fingerprint()
	assert.ErrorIs(t, err, ErrNoPayload)
}
