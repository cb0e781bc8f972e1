package http

import (
	"net/url"
	"strings"
)

// JoinURL appends path segments to baseURL with exactly one slash between
// each part. Segments are used as-is, so callers escape them beforehand.
func JoinURL(baseURL string, elems ...string) string {
	joined := strings.TrimRight(baseURL, "/")
	for _, elem := range elems {
		elem = strings.Trim(elem, "/")
		if elem == "" {
			continue
		}
		joined += "/" + elem
	}
	return joined
}

// EscapeRFC3986 percent-encodes s leaving only unreserved characters
// (ALPHA, DIGIT, "-", ".", "_", "~") as-is. Spaces become %20.
func EscapeRFC3986(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
