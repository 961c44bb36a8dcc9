package names

import (
	"net/url"
	"strings"
)

// Queues with these prefixes are broker-internal or RPC reply queues and must
// never be restored.
var reservedPrefixes = []string{
	"amq.",
	"reply_",
	"rabbitmq.recovery.",
}

// EncodeVhost turns a vhost name into a safe directory name.
func EncodeVhost(vhost string) string {
	return url.PathEscape(vhost)
}

// EncodeQueue turns a queue name into a safe file name stem.
func EncodeQueue(queue string) string {
	return url.PathEscape(queue)
}

// DecodeVhost reverses EncodeVhost. With legacy set it also accepts the old
// dump layout where the default vhost was written as "_".
func DecodeVhost(raw string, legacy bool) (string, error) {
	if raw == "%2F" {
		return "/", nil
	}
	if legacy && raw == "_" {
		return "/", nil
	}
	return url.PathUnescape(raw)
}

// DecodeQueue reverses EncodeQueue. Under the legacy layout "_" was a literal
// underscore, not an escape.
func DecodeQueue(raw string, legacy bool) (string, error) {
	if legacy && raw == "_" {
		return "_", nil
	}
	return url.PathUnescape(raw)
}

// Reserved reports whether a queue name must be skipped on restore.
func Reserved(queue string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(queue, prefix) {
			return true
		}
	}
	return false
}
