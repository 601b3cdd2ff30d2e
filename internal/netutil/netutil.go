package netutil

import (
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP strips ports, brackets and zones from raw and returns the canonical IP.
// ok is false when raw does not contain an IP, in which case raw is returned trimmed.
func NormalizeIP(raw string) (ip string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return canonical(ap.Addr())
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return canonical(addr)
	}
	host := raw
	switch {
	case strings.HasPrefix(raw, "[") && strings.Contains(raw, "]"):
		host = raw[1:strings.LastIndex(raw, "]")]
	case strings.Count(raw, ":") == 1:
		host = raw[:strings.LastIndex(raw, ":")]
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return canonical(addr)
	}
	return raw, false
}

func canonical(addr netip.Addr) (string, bool) {
	addr = addr.WithZone("").Unmap()
	if !addr.IsValid() {
		return "", false
	}
	return addr.String(), true
}

// ClientIP is the normalized remote address of r. RemoteAddr is expected to have
// been rewritten from X-Forwarded-For by the router's RealIP middleware.
func ClientIP(r *http.Request) string {
	ip, _ := NormalizeIP(r.RemoteAddr)
	return ip
}

// TruncateUserAgent caps ua at MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	runes := []rune(ua)
	return string(runes[:MaxUserAgentLength])
}
