package resolver

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/embedfixer/embedfixer/internal/linkdetect"
)

const galleryScrapeAttempts = 3

var extraCountRegex = regexp.MustCompile(`^\+\d+$`)

// resolveGallery scrapes a photo post. The rendered page intermittently
// omits the image markup, so the scrape is retried a few times before the
// post is reported as unresolvable.
func (f *Facebook) resolveGallery(ctx context.Context, rawURL string) (*MediaDescriptor, error) {
	var lastErr error

	for attempt := 0; attempt < galleryScrapeAttempts; attempt++ {
		desc, err := f.scrapeGalleryPage(ctx, rawURL)
		if err == nil {
			return desc, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, upstream(ctx.Err())
		}
	}

	return nil, lastErr
}

func (f *Facebook) scrapeGalleryPage(ctx context.Context, rawURL string) (*MediaDescriptor, error) {
	htmlBytes, err := f.fetcher.Page(ctx, rawURL)
	if err != nil {
		return nil, upstream(err)
	}

	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, upstream(fmt.Errorf("parse page: %w", err))
	}

	images := collectPostImages(doc, f.galleryLimit)
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no post images on page", ErrNotFound)
	}

	desc := &MediaDescriptor{
		Platform:            linkdetect.PlatformFacebook,
		IsVideo:             false,
		PrimaryAddress:      images[0],
		AdditionalAddresses: images,
		Caption:             galleryDescription(doc),
		ExtraCount:          findExtraCount(doc),
		SourceURL:           rawURL,
	}

	if owner := metaContent(doc, "og:title"); owner != "" {
		desc.Author = &Author{
			Name:            owner,
			ProfileImageURL: findProfileImage(doc),
		}
	}

	return desc, nil
}

// collectPostImages gathers the post's gallery image URLs.
//
// Heuristics, matching what the rendered post markup looks like: only <img>
// elements whose direct container is a plain <div> (a hyperlink container
// means navigation chrome, not post content) and whose source is an absolute
// http address longer than 100 characters (excludes icons and data URIs).
// Collection stops when the source path pattern changes, since a different
// CDN path shape means the images belong to another post, or when limit
// images are collected.
func collectPostImages(doc *html.Node, limit int) []string {
	var images []string

	firstPattern := ""
	stop := false

	var traverse func(n *html.Node, parent, grandparent *html.Node)

	traverse = func(n, parent, grandparent *html.Node) {
		if stop {
			return
		}

		if n.Type == html.ElementNode && n.Data == "img" && parent != nil && grandparent != nil {
			if parent.Data == "div" && grandparent.Data != "a" {
				src := attrVal(n, "src")
				if strings.HasPrefix(src, "http") && len(src) > 100 {
					pattern := sourcePathPattern(src)
					if firstPattern == "" {
						firstPattern = pattern
					} else if pattern != firstPattern {
						stop = true

						return
					}

					images = append(images, src)
					if len(images) >= limit {
						stop = true

						return
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c, n, parent)
		}
	}

	traverse(doc, nil, nil)

	return images
}

// sourcePathPattern reduces an image URL to its host and leading path
// segments, the part shared by every image of one post.
func sourcePathPattern(src string) string {
	parts := strings.Split(src, "/")
	if len(parts) < 5 {
		return src
	}

	return strings.Join(parts[2:5], "/")
}

// findProfileImage locates the poster's avatar among the preloaded images.
// The avatar is the only 40x40 jpg the page preloads.
func findProfileImage(doc *html.Node) string {
	var found string

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if found != "" {
			return
		}

		if n.Type == html.ElementNode && n.Data == "link" && attrVal(n, "as") == "image" {
			if href := attrVal(n, "href"); strings.Contains(href, "jpg_s40x40") {
				found = href

				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return found
}

func galleryDescription(doc *html.Node) string {
	if desc := metaContent(doc, "og:description"); desc != "" {
		return desc
	}

	return metaContent(doc, "description")
}

// findExtraCount scans for the "+N" overlay text shown on the last visible
// gallery tile when the post holds more images than the page renders.
func findExtraCount(doc *html.Node) string {
	var found string

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if found != "" {
			return
		}

		if n.Type == html.ElementNode && (n.Data == "div" || n.Data == "span") {
			if text := textContent(n); extraCountRegex.MatchString(text) {
				found = text

				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return found
}
