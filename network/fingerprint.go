package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// The scraping fallback talks to pages guarded by anti-bot challenges that
// reject the standard Go TLS Client Hello. These transports emulate Chrome's
// handshake via uTLS: HTTP/2 is tried first, then plain HTTP/1.1 over the
// same fingerprint.

const fingerprintDialTimeout = 30 * time.Second

var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialFingerprintTLS(ctx, network, addr)
			},
		}
	})
	return h2Transport
}

var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialFingerprintTLS(ctx, network, addr)
	},
}

// fingerprintRoundTripper tries the h2 transport first and falls back to
// HTTP/1.1 when the server refuses the connection.
type fingerprintRoundTripper struct{}

func (fingerprintRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := getH2Transport().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("reset request body: %w", bodyErr)
		}
		clone.Body = body
	}

	return h1Transport.RoundTrip(clone)
}

// NewFingerprintClient returns an HTTP client whose TLS handshake mimics
// Chrome's Client Hello signature.
func NewFingerprintClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: fingerprintRoundTripper{},
	}
}

// dialFingerprintTLS establishes a TLS connection presenting the Chrome 120
// fingerprint.
func dialFingerprintTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: fingerprintDialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
