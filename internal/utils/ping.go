package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const authzPingTimeout = 1500 * time.Millisecond

// PingService opens a TCP connection to the host behind serviceURL to
// verify it is reachable. Scheme default ports apply when the URL
// carries none.
func PingService(serviceURL string, timeout time.Duration) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	address := net.JoinHostPort(parsed.Hostname(), port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingAuthorizer checks that the Authorizer instance is reachable.
func PingAuthorizer(authzURL string) error {
	return PingService(authzURL, authzPingTimeout)
}
