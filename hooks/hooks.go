// CLAUDE:SUMMARY Stock formatter hooks — data-* driven time, link host and number display text.
// Package hooks provides ready-made formatters for microdata.Options.
//
// Each hook reads the target element's data-* attributes to decide how to
// render display text, so presentation stays declared in the markup:
//
//	<time itemprop="published" data-format="ago"></time>
//	<a itemprop="url" data-display="host">link</a>
//	<data itemprop="size" data-unit="bytes"></data>
//
// All hooks are permissive: values they cannot parse render verbatim, never
// as an error.
package hooks

import (
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hazyhaar/domfill/microdata"
)

// DefaultTimeLayout is used by Time when no layout is configured anywhere.
const DefaultTimeLayout = "Jan 2, 2006 15:04"

// timeLayouts are the accepted machine formats, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time returns a formatter for <time> display text. The value must be
// RFC 3339 (full, minute or date precision); anything else renders verbatim.
// A data-format attribute overrides fallbackLayout as the Go layout string,
// and the special value "ago" renders a relative time ("3 days ago").
func Time(fallbackLayout string) microdata.TextFormatter {
	if fallbackLayout == "" {
		fallbackLayout = DefaultTimeLayout
	}
	return func(value string, dataset map[string]string) string {
		t, ok := parseTime(value)
		if !ok {
			return value
		}
		switch layout := dataset["format"]; {
		case layout == "ago":
			return humanize.Time(t)
		case layout != "":
			return t.Format(layout)
		}
		return t.Format(fallbackLayout)
	}
}

func parseTime(value string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LinkHost returns a formatter that rewrites link text to the URL's host,
// but only for anchors opting in with data-display="host". Everything else
// keeps its text.
func LinkHost() microdata.LinkFormatter {
	return func(value string, dataset map[string]string) (string, bool) {
		if dataset["display"] != "host" {
			return "", false
		}
		u, err := url.Parse(value)
		if err != nil || u.Host == "" {
			return "", false
		}
		return u.Host, true
	}
}

// Number returns a formatter for <data> display text. With data-unit="bytes"
// the value renders as a humanized byte size ("2.0 kB"); otherwise integers
// and floats get digit grouping ("1,234,567"). Non-numeric values render
// verbatim.
func Number() microdata.TextFormatter {
	return func(value string, dataset map[string]string) string {
		if dataset["unit"] == "bytes" {
			if n, err := strconv.ParseUint(value, 10, 64); err == nil {
				return humanize.Bytes(n)
			}
			return value
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return humanize.Comma(n)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return humanize.Commaf(f)
		}
		return value
	}
}

// Options bundles the three stock hooks into a ready-to-use Options value.
// timeLayout "" means DefaultTimeLayout. The TypeHelpers map is left nil;
// callers add their own.
func Options(timeLayout string) *microdata.Options {
	return &microdata.Options{
		LinkText: LinkHost(),
		TimeText: Time(timeLayout),
		DataText: Number(),
	}
}
