// Package linkdetect scans message text for links to supported media
// platforms and classifies them by source.
package linkdetect

import (
	"regexp"
	"strings"
)

type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformInvalid   Platform = "invalid"
)

// Link is a recognized platform URL extracted from message text.
type Link struct {
	URL      string
	Platform Platform
	ItemID   string
	Position int
}

var (
	urlRegex       = regexp.MustCompile(`https?://[^\s<>"{}|\\^\x60\[\]]+`)
	tiktokRegex    = regexp.MustCompile(`tiktok\.com/.*/`)
	facebookRegex  = regexp.MustCompile(`(facebook\.com/.*/|fb\.watch/.*/)`)
	instagramRegex = regexp.MustCompile(`instagram\.com/(p|reel|tv)/([A-Za-z0-9_-]+)/?`)
)

// Classify extracts every recognized platform link from text, in order of
// appearance. Unrecognized URLs are filtered out, not returned as invalid.
func Classify(text string) []Link {
	matches := urlRegex.FindAllStringIndex(text, -1)

	var links []Link

	seen := make(map[string]bool)

	for _, match := range matches {
		rawURL := strings.TrimRight(text[match[0]:match[1]], ".,;:!?)")
		if seen[rawURL] {
			continue
		}

		platform, itemID := classifyURL(rawURL)
		if platform == PlatformInvalid {
			continue
		}

		seen[rawURL] = true

		links = append(links, Link{
			URL:      rawURL,
			Platform: platform,
			ItemID:   itemID,
			Position: match[0],
		})
	}

	return links
}

// Validate classifies a single candidate URL. Unlike Classify it reports
// PlatformInvalid explicitly, for diagnostics.
func Validate(rawURL string) Link {
	platform, itemID := classifyURL(rawURL)

	return Link{URL: rawURL, Platform: platform, ItemID: itemID}
}

func classifyURL(rawURL string) (Platform, string) {
	if tiktokRegex.MatchString(rawURL) {
		return PlatformTikTok, ""
	}

	if facebookRegex.MatchString(rawURL) {
		return PlatformFacebook, ""
	}

	if m := instagramRegex.FindStringSubmatch(rawURL); m != nil {
		return PlatformInstagram, m[2]
	}

	return PlatformInvalid, ""
}
