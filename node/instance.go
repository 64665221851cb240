package node

import "github.com/teris-io/shortid"

// NewInstanceID mints a short, URL-safe process identifier. The
// binaries print it in their startup and admin-listen log lines and
// the admin /healthz response, so operators can tell apart multiple
// elder/adult processes sharing a host during development.
func NewInstanceID() (string, error) {
	return shortid.Generate()
}
