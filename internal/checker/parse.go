package checker

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// clientRedirectPatterns match the two redirect conventions the portal uses
// after a successful login: a script assigning window.location and a meta
// refresh tag. Capture group 1 is the target path.
var clientRedirectPatterns = []*regexp.Regexp{ //nolint: gochecknoglobals
	regexp.MustCompile(`(?i)window\.location(?:\.href)?\s*=\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?refresh["']?[^>]+url\s*=\s*([^"'>\s]+)`),
}

// extractHiddenInput parses the document and returns the value of the hidden
// <input> with the given name.
func extractHiddenInput(body []byte, name string) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var value string
	var found bool
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" {
			attrs := attrMap(n)
			if attrs["type"] == "hidden" && attrs["name"] == name && attrs["value"] != "" {
				value, found = attrs["value"], true

				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return value, found
}

// clientRedirectTarget looks for a client-side redirect directive in the body
// and returns its target.
func clientRedirectTarget(body []byte) (string, bool) {
	for _, pattern := range clientRedirectPatterns {
		if m := pattern.FindSubmatch(body); m != nil {
			return string(m[1]), true
		}
	}

	return "", false
}

// extractStatusText locates the status marker cell (the td styled with a
// salmon background) and returns its sanitized nested text.
func extractStatusText(body []byte) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var cell *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if cell != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "td" && isStatusMarker(attrMap(n)["style"]) {
			cell = n

			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if cell == nil {
		return "", false
	}

	return sanitizeText(textContent(cell)), true
}

// isStatusMarker reports whether a style attribute carries the portal's
// status marker: a salmon background color.
func isStatusMarker(style string) bool {
	lower := strings.ToLower(style)

	return strings.Contains(lower, "background-color") && strings.Contains(lower, "salmon")
}

// textContent collects all text nodes below n in document order.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString("\n")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)

	return sb.String()
}

// sanitizeText normalizes extracted markup text: NBSP becomes a regular
// space, every line is trimmed, empty lines are dropped and the remainder is
// joined with single newlines.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return strings.Join(lines, "\n")
}

func attrMap(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	return attrs
}
