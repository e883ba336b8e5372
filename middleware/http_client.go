package middleware

import (
	"net/http"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// NewHTTPClient returns the client used for calls to the lookup service and
// the message webhook. When traced, outbound requests are recorded as X-Ray
// subsegments of the caller's segment.
func NewHTTPClient(timeout time.Duration, traced bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if traced {
		return xray.Client(client)
	}
	return client
}
