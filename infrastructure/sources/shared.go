// Package sources implements the data acquisition layer of the ranking
// pipeline: scrapers and decoders for the popularity indexes (TIOBE, PYPL,
// Languish), the benchmark timing dataset, and the web-framework throughput
// survey. Every source speaks through a ports.Fetcher so transport policy
// (timeouts, retries, rate limits, metrics) stays outside this package.
//
// Parsing is deliberately forgiving at the row level: a cell that does not
// yield a number produces a missing value, a row that does not yield a
// candidate is dropped. Structural failures (a marker or table that should
// exist, a dataset with no usable content) surface as *ports.SourceError
// so callers can tell which source and which phase failed.
package sources

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// findFirst returns the first element below root, in document order, that
// match accepts, or nil. The root itself is never considered.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element below root, in document order, that match
// accepts. The root itself is never considered.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && match(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// element matches element nodes by tag name.
func element(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// attrValue returns the value of the named attribute, or "" when absent.
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr reports whether the named attribute is present, even if empty.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// hasClasses reports whether the node's class attribute carries every one
// of the wanted class names.
func hasClasses(n *html.Node, want ...string) bool {
	classes := strings.Fields(attrValue(n, "class"))
	for _, wanted := range want {
		found := false
		for _, class := range classes {
			if class == wanted {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// nodeText flattens the subtree's text nodes into one string: each chunk
// trimmed, empties dropped, survivors joined with a single space.
func nodeText(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			trimmed := strings.TrimSpace(node.Data)
			if trimmed != "" {
				if out.Len() > 0 {
					out.WriteByte(' ')
				}
				out.WriteString(trimmed)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out.String()
}

// cellTexts returns the flattened text of every td below the row.
func cellTexts(row *html.Node) []string {
	cells := findAll(row, element("td"))
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		out = append(out, nodeText(cell))
	}
	return out
}

// parsePercent extracts a float from a formatted share or trend cell.
// ASCII digits accumulate, the first '.' or ',' becomes the decimal point,
// and a minus (ASCII or typographic) before any digit negates. Everything
// else, including '+', '%', and spacing of any width, is ignored. Returns
// false when the cell carried no digits at all.
func parsePercent(value string) (float64, bool) {
	var buf strings.Builder
	sawDigit := false
	sawDecimal := false

	for _, ch := range value {
		switch ch {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			buf.WriteRune(ch)
			sawDigit = true
		case '.', ',':
			if !sawDecimal {
				buf.WriteByte('.')
				sawDecimal = true
			}
		case '-', '−', '–', '—':
			if buf.Len() == 0 {
				buf.WriteByte('-')
			}
		}
	}

	if !sawDigit {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(buf.String(), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// parseRank pulls the integer out of a rank cell, ignoring ordinal marks,
// footnote symbols, and separators. Returns nil when no digits remain or
// the digits overflow an int.
func parseRank(value string) *int {
	var digits strings.Builder
	for _, ch := range value {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	parsed, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &parsed
}
