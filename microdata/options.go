// CLAUDE:SUMMARY Options for Apply — link/time/data text formatters and per-@type helper hooks.
package microdata

import "golang.org/x/net/html"

// TextFormatter produces the visible text for a <time> or <data> element.
// It receives the raw value and the element's data-* attributes and always
// returns the replacement text.
type TextFormatter func(value string, dataset map[string]string) string

// LinkFormatter produces the visible text for an <a> element. Returning
// ok == false leaves the existing text untouched; the href is set either way.
type LinkFormatter func(value string, dataset map[string]string) (text string, ok bool)

// TypeHelper can take over rendering for records of one @type. Returning
// true suppresses the default property recursion for that record; returning
// false falls back to it.
type TypeHelper func(item *Item, n *html.Node) bool

// Options configures Apply. All fields are optional; a nil Options behaves
// like the zero value. The same Options is shared read-only by every
// recursive call — Apply never copies or mutates it.
type Options struct {
	// LinkText customizes hyperlink display text (href is never affected).
	LinkText LinkFormatter

	// TimeText replaces the visible text of <time> elements after the
	// datetime attribute has been written.
	TimeText TextFormatter

	// DataText replaces the visible text of <data> elements after the
	// value attribute has been written.
	DataText TextFormatter

	// TypeHelpers maps an @type to a helper that may fully own rendering
	// for records of that type. A record whose type has no entry renders
	// exactly as if no helpers were configured.
	TypeHelpers map[string]TypeHelper
}
