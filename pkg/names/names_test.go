package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		vhost string
		queue string
	}{
		{name: "default vhost", vhost: "/", queue: "orders"},
		{name: "plain names", vhost: "prod", queue: "billing.events"},
		{name: "names with slashes", vhost: "tenant/a", queue: "jobs/retry"},
		{name: "names with spaces", vhost: "my vhost", queue: "my queue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vhost, err := DecodeVhost(EncodeVhost(tt.vhost), false)
			require.NoError(t, err)
			assert.Equal(t, tt.vhost, vhost)

			queue, err := DecodeQueue(EncodeQueue(tt.queue), false)
			require.NoError(t, err)
			assert.Equal(t, tt.queue, queue)
		})
	}
}

func TestDecodeLegacy(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		legacy bool
		vhost  string
		queue  string
	}{
		{name: "escaped default vhost", raw: "%2F", legacy: false, vhost: "/", queue: "/"},
		{name: "legacy underscore vhost", raw: "_", legacy: true, vhost: "/", queue: "_"},
		{name: "underscore without legacy", raw: "_", legacy: false, vhost: "_", queue: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vhost, err := DecodeVhost(tt.raw, tt.legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.vhost, vhost)

			queue, err := DecodeQueue(tt.raw, tt.legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.queue, queue)
		})
	}
}

func TestReserved(t *testing.T) {
	tests := []struct {
		queue    string
		reserved bool
	}{
		{queue: "amq.gen-xyz", reserved: true},
		{queue: "reply_123", reserved: true},
		{queue: "rabbitmq.recovery.helper", reserved: true},
		{queue: "orders", reserved: false},
		{queue: "amqp-ish", reserved: false},
		{queue: "my_reply_queue", reserved: false},
	}

	for _, tt := range tests {
		t.Run(tt.queue, func(t *testing.T) {
			assert.Equal(t, tt.reserved, Reserved(tt.queue))
		})
	}
}
