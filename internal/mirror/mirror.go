// Package mirror rewrites recognized media URLs onto alternate proxy domains
// whose pages Discord is able to render an embed for.
package mirror

import "strings"

// Rewrite substitutes host for the host segment of rawURL, keeping the
// scheme and the full path/query tail. Total for well-formed http(s) URLs;
// anything without a host segment is returned unchanged.
func Rewrite(rawURL, host string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}

	_, tail, ok := strings.Cut(rest, "/")
	if !ok {
		return scheme + "://" + host
	}

	return scheme + "://" + host + "/" + tail
}
