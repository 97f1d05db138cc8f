package domain

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyHost  = errors.New("empty host")
	ErrIPLiteral  = errors.New("ip literals are not domains")
	ErrBadPattern = errors.New("unsupported wildcard pattern")
)

// Normalize takes a raw URL as a user would type it in the browser and
// extracts its scheme and canonical host. Input without a scheme is taken
// to be a bare host.
func Normalize(raw string) (NormalizedURL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NormalizedURL{}, fmt.Errorf("empty url")
	}

	scheme := ""
	rest := raw
	if i := strings.Index(raw, "://"); i >= 0 {
		if i == 0 {
			return NormalizedURL{}, fmt.Errorf("url must contain scheme")
		}
		switch s := raw[:i]; {
		case strings.EqualFold(s, "http"):
			scheme = "http"
		case strings.EqualFold(s, "https"):
			scheme = "https"
		default:
			return NormalizedURL{}, fmt.Errorf("unsupported scheme: %s", s)
		}
		rest = raw[i+3:]
	}

	// Cut path, query and fragment.
	if cut := strings.IndexAny(rest, "/?#"); cut != -1 {
		rest = rest[:cut]
	}

	host, err := normalizeHost(rest)
	if err != nil {
		return NormalizedURL{}, err
	}
	return NormalizedURL{Scheme: scheme, Host: host}, nil
}

// NormalizeHost normalizes a raw host/domain string (no scheme, no path).
func NormalizeHost(raw string) (string, error) {
	return normalizeHost(raw)
}

// NormalizeEntry normalizes one list entry. A leading ".", "*." or "+."
// marks a wildcard entry; the returned name then keeps a single leading
// dot. IP literals and any other glob are rejected.
func NormalizeEntry(raw string) (name string, wildcard bool, err error) {
	raw = strings.TrimSpace(raw)
	for _, p := range []string{"*.", "+.", "."} {
		if strings.HasPrefix(raw, p) {
			raw = raw[len(p):]
			wildcard = true
			break
		}
	}
	if strings.ContainsAny(raw, "*?") {
		return "", false, ErrBadPattern
	}

	host, err := normalizeHost(raw)
	if err != nil {
		return "", false, err
	}
	if net.ParseIP(host) != nil {
		return "", false, ErrIPLiteral
	}
	if wildcard {
		return "." + host, true, nil
	}
	return host, false, nil
}

func normalizeHost(hostport string) (string, error) {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return "", ErrEmptyHost
	}

	// Strip userinfo if present: user:pass@host
	if at := strings.LastIndexByte(hostport, '@'); at != -1 {
		hostport = hostport[at+1:]
	}

	host := hostport
	if strings.Contains(hostport, ":") {
		if h, _, err := net.SplitHostPort(hostport); err == nil {
			host = h
		}
	}

	// "example.com." → "example.com", "[2001:db8::1]" → "2001:db8::1".
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if len(host) > 2 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}
	if host == "" {
		return "", ErrEmptyHost
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	// ASCII-only host: lowercase in place and skip IDNA.
	if isASCII(host) {
		b := []byte(host)
		for i := 0; i < len(b); i++ {
			if c := b[i]; c >= 'A' && c <= 'Z' {
				b[i] = c + 32
			}
		}
		return string(b), nil
	}

	asciiHost, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return strings.ToLower(asciiHost), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
