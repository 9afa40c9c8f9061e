// Package helpers provides small shared utilities that don't fit into
// domain-specific packages, currently IP and hostname classification
// used by redirect URI matching.
package helpers

import "net"

// IsLoopbackHostname checks if a hostname represents a loopback address.
// This includes the entire 127.0.0.0/8 range (RFC 1122) and IPv6 ::1.
// Expects hostname without port (as returned by url.URL.Hostname()).
func IsLoopbackHostname(hostname string) bool {
	if hostname == "localhost" {
		return true
	}

	// Strip brackets from IPv6 literals like [::1]
	cleanHostname := hostname
	if len(hostname) > 2 && hostname[0] == '[' && hostname[len(hostname)-1] == ']' {
		cleanHostname = hostname[1 : len(hostname)-1]
	}

	if ip := net.ParseIP(cleanHostname); ip != nil {
		return ip.IsLoopback()
	}

	return false
}
