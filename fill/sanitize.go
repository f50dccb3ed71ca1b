// CLAUDE:SUMMARY Bluemonday policy for rendered output: UGC base plus microdata attributes and value-carrying elements.
package fill

import "github.com/microcosm-cc/bluemonday"

// renderPolicy builds the sanitizer applied to rendered fragments. The UGC
// base covers common markup; on top of it the policy admits what the
// renderer itself traffics in — microdata attributes, data-* attributes,
// and the value-carrying elements (<time>, <data>, <meter>) — plus the
// structural and media elements card templates tend to use. Scripts, event
// handlers, iframes, and javascript: URLs stay stripped; templates that
// genuinely need such markup run with sanitize disabled.
func renderPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// UGC forces rel=nofollow onto links, which would rewrite rendered
	// output. Keep links as the template authored them.
	p.RequireNoFollowOnLinks(false)

	p.AllowAttrs("itemprop", "itemscope", "itemtype", "itemid", "itemref").Globally()
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()

	p.AllowElements("template", "time", "data", "meter")
	p.AllowAttrs("datetime").OnElements("time")
	p.AllowAttrs("value").OnElements("data", "meter")
	p.AllowAttrs("min", "max", "low", "high", "optimum").OnElements("meter")

	p.AllowElements("article", "aside", "footer", "header", "main", "nav", "section")

	p.AllowAttrs("src", "controls", "preload").OnElements("audio", "video")
	p.AllowAttrs("poster", "width", "height").OnElements("video")
	p.AllowAttrs("src", "type", "media").OnElements("source")
	p.AllowAttrs("src", "kind", "srclang", "label", "default").OnElements("track")
	p.AllowElements("source", "track")

	return p
}
