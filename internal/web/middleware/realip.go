package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only when the connection itself comes from one of the given proxy CIDRs.
// Requests from anywhere else keep their socket address, so untrusted
// clients cannot spoof their IP past the rate limiter or the access log.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrustedNets(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if remoteIP(r.RemoteAddr).isIn(trusted) {
				if ip := clientIPFromHeaders(r); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrustedNets parses the configured CIDR list once at startup. Entries
// given as bare IPs are widened to /32 or /128. Unparseable entries are
// logged and skipped rather than failing the server.
func parseTrustedNets(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if _, network, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, network)
			continue
		}

		if ip := net.ParseIP(cidr); ip != nil {
			mask := net.CIDRMask(128, 128)
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: mask})
			continue
		}

		slog.Warn("realip: skipping invalid trusted proxy entry", "cidr", cidr)
	}
	return nets
}

// clientIPFromHeaders returns the proxy-reported client IP, preferring
// X-Real-IP and falling back to the first hop of X-Forwarded-For. Returns
// nil when neither header carries a valid address.
func clientIPFromHeaders(r *http.Request) net.IP {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if ip := net.ParseIP(rip); ip != nil {
			return ip
		}
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return nil
	}
	first, _, _ := strings.Cut(xff, ",")
	return net.ParseIP(strings.TrimSpace(first))
}

type remoteIP string

// isIn reports whether the remote address, with any port stripped, falls in
// one of the trusted networks.
func (a remoteIP) isIn(trusted []*net.IPNet) bool {
	host := string(a)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
