// CLAUDE:SUMMARY Node helpers — subtree search, template prototypes, deep clone, attribute and text slots.
package microdata

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// findProperty returns the first descendant of n, in document order, whose
// itemprop attribute equals name. n itself is never a candidate.
func findProperty(n *html.Node, name string) *html.Node {
	return findDescendant(n, func(d *html.Node) bool {
		return getAttr(d, "itemprop") == name
	})
}

// findTemplate returns the first descendant <template> whose data-type
// attribute equals key.
func findTemplate(n *html.Node, key string) *html.Node {
	return findDescendant(n, func(d *html.Node) bool {
		return d.DataAtom == atom.Template && getAttr(d, "data-type") == key
	})
}

// findDescendant walks n's subtree in document order, excluding n itself.
// The walk never descends into a <template>: x/net/html keeps template
// content as ordinary children, but those children are inert prototypes and
// must stay invisible to property and template lookups. The template
// element itself is still a candidate.
func findDescendant(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if match(c) {
				return c
			}
			if c.DataAtom == atom.Template {
				continue
			}
		}
		if found := findDescendant(c, match); found != nil {
			return found
		}
	}
	return nil
}

// firstElementChild returns n's first child of element type, nil when none.
func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of n's subtree, detached from any parent.
func Clone(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(Clone(c))
	}
	return clone
}

// Dataset returns the element's data-* attributes with the prefix stripped.
// This is the map formatter hooks receive. Returns nil when the element has
// no data attributes.
func Dataset(n *html.Node) map[string]string {
	var ds map[string]string
	for _, a := range n.Attr {
		if a.Namespace != "" || !strings.HasPrefix(a.Key, "data-") {
			continue
		}
		if ds == nil {
			ds = make(map[string]string)
		}
		ds[strings.TrimPrefix(a.Key, "data-")] = a.Val
	}
	return ds
}

// getAttr returns the value of an attribute on a node, "" when absent.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr overwrites an attribute in place, appending it when absent.
func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// setText replaces n's children with a single text node holding text. An
// empty text leaves the element with no children.
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
