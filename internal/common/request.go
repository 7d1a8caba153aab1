package common

import (
	"net"
	"net/http"
)

// ClientIP returns the request's client address without the port. chi's
// RealIP middleware substitutes proxy headers into RemoteAddr where
// present; direct connections keep the "ip:port" form, so the port has
// to be stripped here.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
