// CLAUDE:SUMMARY Fragment parse and render round-trip on top of x/net/html.
package microdata

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses an HTML fragment as body content and returns its
// top-level nodes. Unlike html.Parse it does not wrap the input in a full
// document skeleton, so a fragment survives a parse/render round-trip
// byte-for-byte modulo the usual parser normalizations.
func ParseFragment(r io.Reader) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("microdata: parse fragment: %w", err)
	}
	return nodes, nil
}

// RenderNodes serializes nodes to w in order.
func RenderNodes(w io.Writer, nodes ...*html.Node) error {
	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("microdata: render: %w", err)
		}
	}
	return nil
}

// RenderString serializes nodes to a string, swallowing render errors,
// which cannot happen on a strings.Builder.
func RenderString(nodes ...*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		html.Render(&sb, n)
	}
	return sb.String()
}

// FirstElement returns the first element node among nodes, nil when the
// fragment holds no elements. Convenient for fragments known to have a
// single root.
func FirstElement(nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}
