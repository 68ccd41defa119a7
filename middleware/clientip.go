package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller's address: the first X-Forwarded-For hop,
// then X-Real-IP, then the connection address without its port. Header
// values equal to "unknown" are ignored.
//
// Forwarding headers are trusted as sent; deploy behind a proxy that
// overwrites them.
func ClientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); usable(xff) {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); usable(xr) {
		return xr
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func usable(v string) bool {
	return v != "" && !strings.EqualFold(v, "unknown")
}
