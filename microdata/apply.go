// CLAUDE:SUMMARY Core recursive apply — dispatches on Thing shape, fills per-element value slots, clones list templates.
package microdata

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Apply renders data into n's subtree. Text values fill the element's value
// slot, List values materialize template clones, Item properties recurse
// into descendants carrying the matching itemprop. Apply only ever mutates
// n's subtree; the root element itself is neither created nor destroyed,
// and data is read-only.
//
// A nil data or nil element is a no-op. Panics raised by caller-supplied
// hooks propagate unchanged.
func Apply(data Thing, n *html.Node, opts *Options) {
	if data == nil || n == nil {
		return
	}
	if opts == nil {
		opts = &Options{}
	}
	apply(data, n, opts)
}

func apply(data Thing, n *html.Node, opts *Options) {
	switch v := data.(type) {
	case Text:
		applyText(string(v), n, opts)
	case List:
		applyList(v, n, opts)
	case *Item:
		if v == nil {
			return
		}
		if helper, ok := opts.TypeHelpers[v.Type]; ok {
			if helper(v, n) {
				return
			}
		}
		for _, p := range v.props {
			if p.value == nil || IsMetaKey(p.name) {
				continue
			}
			target := findProperty(n, p.name)
			if target == nil {
				continue
			}
			apply(p.value, target, opts)
		}
	}
}

// applyText writes value into the slot appropriate for the element kind.
// The switch is ordered to match the precedence of the source-of-truth
// mapping; each branch fully overwrites its slot, never appends.
func applyText(value string, n *html.Node, opts *Options) {
	switch n.DataAtom {
	case atom.Meta:
		setAttr(n, "content", value)
	case atom.Img, atom.Audio, atom.Embed, atom.Iframe, atom.Source, atom.Track, atom.Video:
		setAttr(n, "src", value)
	case atom.A, atom.Area, atom.Link:
		setAttr(n, "href", value)
		if n.DataAtom == atom.A && opts.LinkText != nil {
			if text, ok := opts.LinkText(value, Dataset(n)); ok {
				setText(n, text)
			}
		}
	case atom.Object:
		setAttr(n, "data", value)
	case atom.Data:
		setAttr(n, "value", value)
		if opts.DataText != nil {
			setText(n, opts.DataText(value, Dataset(n)))
		}
	case atom.Meter:
		setAttr(n, "value", meterValue(value))
	case atom.Time:
		setAttr(n, "datetime", value)
		if opts.TimeText != nil {
			setText(n, opts.TimeText(value, Dataset(n)))
		}
	default:
		setText(n, value)
	}
}

// meterValue is the permissive integer parse for <meter>: invalid input
// writes the NaN sentinel instead of failing the render.
func meterValue(value string) string {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "NaN"
	}
	return strconv.Itoa(i)
}

// applyList materializes one template clone per entry, in input order. An
// entry with no template key, no matching template, or a template with no
// element child is skipped without a placeholder. Each clone is fully
// populated before the next entry begins, and append order equals input
// order.
func applyList(items List, n *html.Node, opts *Options) {
	for _, item := range items {
		key := templateKey(item)
		if key == "" {
			continue
		}
		tmpl := findTemplate(n, key)
		if tmpl == nil {
			continue
		}
		proto := firstElementChild(tmpl)
		if proto == nil {
			continue
		}
		clone := Clone(proto)
		apply(item, clone, opts)
		n.AppendChild(clone)
	}
}

// templateKey names the template slot for one list entry: "Text" for scalar
// strings, the @type for records. Entries with no type — nested bare lists,
// untyped items, absent values — have no slot.
func templateKey(item Thing) string {
	switch v := item.(type) {
	case Text:
		return "Text"
	case *Item:
		if v != nil {
			return v.Type
		}
	}
	return ""
}
