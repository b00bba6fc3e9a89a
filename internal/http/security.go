package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
)

// requestStats counts what the middleware throttled or flagged. Reported on
// /readyz.
type requestStats struct {
	throttledWrites atomic.Int64
	flagged         atomic.Int64
}

type requestStatsSnapshot struct {
	ThrottledWrites int64 `json:"throttled_writes"`
	FlaggedRequests int64 `json:"flagged_requests"`
}

func (s *requestStats) snapshot() requestStatsSnapshot {
	return requestStatsSnapshot{
		ThrottledWrites: s.throttledWrites.Load(),
		FlaggedRequests: s.flagged.Load(),
	}
}

// Peers allowed to set X-Forwarded-For and X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address. Behind a trusted proxy it walks
// X-Forwarded-For from the right and returns the first hop that is not a
// proxy, falling back to X-Real-IP.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !isTrustedProxy(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !isTrustedProxy(hop) {
				return hop.String()
			}
		}
	}
	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.String()
	}
	return host
}

// Fragments scanners put in paths and parameters. The API never uses them.
var probePatterns = []string{
	"../", "..\\", ".env", ".git", ".php", "wp-admin", "phpmyadmin",
	"etc/passwd", "cmd.exe", "<script", "javascript:", "union select", "eval(",
}

// Query parameters carrying user-written text are not screened.
var freeTextParams = map[string]bool{
	"search":   true,
	"category": true,
}

var scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}

const (
	maxURLLength     = 2048
	maxForwardedHops = 5
)

// screenRequest returns why r looks like a probe, or "" when it does not.
// Bodies are not inspected.
func screenRequest(r *http.Request) string {
	switch r.Method {
	case http.MethodTrace, http.MethodConnect, "TRACK", "DEBUG":
		return "method " + r.Method
	}
	if len(r.URL.String()) > maxURLLength {
		return "oversized URL"
	}
	if p := probeIn(r.URL.Path); p != "" {
		return "path contains " + p
	}
	for name, values := range r.URL.Query() {
		if freeTextParams[name] {
			continue
		}
		for _, v := range values {
			if p := probeIn(v); p != "" {
				return "parameter " + name + " contains " + p
			}
		}
	}
	ua := strings.ToLower(r.UserAgent())
	for _, agent := range scannerAgents {
		if strings.Contains(ua, agent) {
			return "scanner " + agent
		}
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxForwardedHops {
		return "forwarding chain too long"
	}
	return ""
}

func probeIn(s string) string {
	s = strings.ToLower(s)
	for _, p := range probePatterns {
		if strings.Contains(s, p) {
			return p
		}
	}
	return ""
}
