package resolver

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// scriptByID returns the text content of the <script> element with the given
// id attribute, or "" when the document has none.
func scriptByID(htmlBytes []byte, id string) string {
	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return ""
	}

	var found string

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if found != "" {
			return
		}

		if n.Type == html.ElementNode && n.Data == "script" && attrVal(n, "id") == id {
			found = textContent(n)

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return found
}

// jsonScripts returns the text content of every
// <script type="application/json"> element in document order.
func jsonScripts(htmlBytes []byte) []string {
	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil
	}

	var blocks []string

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attrVal(n, "type") == "application/json" {
			if text := textContent(n); text != "" {
				blocks = append(blocks, text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return blocks
}

// metaContent returns the content attribute of the first <meta> whose
// property or name attribute equals key.
func metaContent(doc *html.Node, key string) string {
	var found string

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if found != "" {
			return
		}

		if n.Type == html.ElementNode && n.Data == "meta" {
			if attrVal(n, "property") == key || attrVal(n, "name") == key {
				found = attrVal(n, "content")

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

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}

	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	return strings.TrimSpace(sb.String())
}
