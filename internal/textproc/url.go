package textproc

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// directoryIndexes are filenames that name a directory's default document.
// A path ending in one of these is equivalent to the directory itself, so
// they are stripped during normalization.
var directoryIndexes = []string{
	"index.html",
	"index.htm",
	"index.php",
	"index.asp",
	"default.html",
	"default.htm",
	"home.html",
}

// URLParts is the result of normalizing a raw URL.
type URLParts struct {
	// Key is the normalized URL used as the page identity:
	// hostname plus path, with all protocol/query/fragment/"www." noise
	// removed.
	Key string

	// Domain is the registrable domain (eTLD+1), e.g. "example.co.uk".
	Domain string

	// Hostname is the full host minus any "www." prefix.
	Hostname string

	// Path is the cleaned URL path, without a trailing slash or a
	// directory-index filename.
	Path string
}

// NormalizeURL derives the canonical identity parts of a raw URL.
//
// It strips the scheme, a leading "www.", the query string, the fragment,
// any trailing slash, and well-known directory-index filenames. Input that
// does not parse falls back to using the cleaned raw string for every part;
// this function never returns an error so that a malformed URL can still be
// saved and found again under the same key.
func NormalizeURL(raw string) URLParts {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		// Retry with a scheme; bare "example.com/page" parses as a path.
		u, err = url.Parse("http://" + trimmed)
	}
	if err != nil || u.Host == "" {
		fallback := cleanRawURL(trimmed)
		return URLParts{
			Key:      fallback,
			Domain:   fallback,
			Hostname: fallback,
			Path:     fallback,
		}
	}

	hostname := strings.ToLower(u.Hostname())
	hostname = strings.TrimPrefix(hostname, "www.")

	path := cleanPath(u.EscapedPath())

	domain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		// Hosts without a known public suffix (IPs, localhost, bare
		// words) keep the hostname as their domain.
		domain = hostname
	}

	return URLParts{
		Key:      hostname + path,
		Domain:   domain,
		Hostname: hostname,
		Path:     path,
	}
}

// cleanPath removes directory-index filenames and the trailing slash.
func cleanPath(p string) string {
	for _, idx := range directoryIndexes {
		if strings.HasSuffix(strings.ToLower(p), "/"+idx) {
			p = p[:len(p)-len(idx)]
			break
		}
	}

	p = strings.TrimSuffix(p, "/")
	return p
}

// cleanRawURL applies the same noise-stripping rules to a string that
// could not be parsed as a URL.
func cleanRawURL(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i != -1 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "?#"); i != -1 {
		s = s[:i]
	}
	s = strings.TrimPrefix(strings.ToLower(s), "www.")
	return strings.TrimSuffix(s, "/")
}
