package models

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultConnectTimeout bounds establishing a connection to the model provider.
	DefaultConnectTimeout = 100 * time.Second

	// DefaultReadTimeout bounds waiting for the provider's response headers. Completions with
	// many action rounds are slow, so this is generous.
	DefaultReadTimeout = 600 * time.Second
)

// NewHTTPClient returns an HTTP client for model providers with separate connect and read
// timeouts. Zero values select the defaults. There is no overall client timeout; callers
// bound a request with its context.
func NewHTTPClient(connect, read time.Duration) *http.Client {
	if connect <= 0 {
		connect = DefaultConnectTimeout
	}
	if read <= 0 {
		read = DefaultReadTimeout
	}

	dialer := &net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = connect
	transport.ResponseHeaderTimeout = read

	return &http.Client{Transport: transport}
}
