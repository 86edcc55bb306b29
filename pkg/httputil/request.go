package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/platinummonkey/launchgate/pkg/contextkeys"
)

var (
	// ErrEmptyBody is returned when the request has no body to decode
	ErrEmptyBody = errors.New("empty request body")

	// ErrBodyTooLarge is returned when the body exceeds the MaxBytesMiddleware limit
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrTrailingData is returned when more than one JSON value is sent
	ErrTrailingData = errors.New("unexpected data after JSON value")
)

// ParseJSON decodes exactly one JSON value from the request body into dest.
// Unknown fields are ignored so clients can send extra properties.
func ParseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return decodeError(err)
		}
		return ErrTrailingData
	}
	return nil
}

func decodeError(err error) error {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBytesErr.Limit)
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	default:
		return fmt.Errorf("invalid JSON: %w", err)
	}
}

// ClientIP returns the client address resolved by ClientIPMiddleware, or the
// connection address when the middleware did not run. Forwarding headers are
// never read here, so a client cannot choose the address recorded for it.
func ClientIP(r *http.Request) string {
	if ip := contextkeys.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return PeerIP(r)
}

// PeerIP returns the address of the directly connected peer
func PeerIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ParseTrustedProxies parses CIDR ranges or single addresses of the reverse
// proxies whose forwarding headers are believed
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// resolveClientIP walks X-Forwarded-For from the nearest hop back while each
// hop is a trusted proxy. Headers are ignored unless the peer is trusted.
func resolveClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := PeerIP(r)
	if !isTrusted(peer, trusted) {
		return peer
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !isTrusted(hops[i], trusted) {
			return hops[i]
		}
	}
	if len(hops) > 0 {
		return hops[0]
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
