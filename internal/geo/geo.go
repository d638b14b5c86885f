// Package geo resolves the visitor's approximate location from headers
// injected by the edge proxy in front of the server.
package geo

import (
	"net/http"
	"net/url"
)

// Location is the coarse position of a request, as reported by the edge.
// Fields are empty when the proxy did not provide them.
type Location struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// FromRequest extracts the location from proxy headers. Vercel-style
// headers are preferred; Cloudflare's country header is a fallback.
// City values arrive percent-encoded and are decoded here.
func FromRequest(r *http.Request) Location {
	loc := Location{
		Country: r.Header.Get("X-Vercel-IP-Country"),
		Region:  r.Header.Get("X-Vercel-IP-Country-Region"),
		City:    decode(r.Header.Get("X-Vercel-IP-City")),
	}
	if loc.Country == "" {
		loc.Country = r.Header.Get("CF-IPCountry")
	}
	return loc
}

func decode(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
