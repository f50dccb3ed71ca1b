// CLAUDE:SUMMARY Thing tagged union (Text, List, Item) with order-preserving JSON decoding.
// Package microdata applies micro data values to HTML fragments.
//
// A Thing is one of three shapes: Text (a scalar string), List (an ordered
// sequence of Things), or *Item (a keyed record whose "@"-prefixed keys are
// metadata, notably the "@type" discriminator). Apply walks a Thing against
// an element subtree parsed with golang.org/x/net/html: scalar values are
// written into the slot appropriate for the element kind (content, src,
// href, datetime, text, ...), list entries clone <template data-type="...">
// prototypes, and record properties recurse into the first descendant
// carrying a matching itemprop attribute. Data with no matching markup, and
// markup with no matching data, are skipped silently — partial overlap is
// the normal case, not an error.
//
// The input Thing is never mutated. The target subtree is mutated in place.
//
// Usage:
//
//	nodes, _ := microdata.ParseFragment(strings.NewReader(fragment))
//	data, _ := microdata.Parse(raw)
//	microdata.Apply(data, microdata.FirstElement(nodes), nil)
//	out := microdata.RenderString(nodes...)
package microdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Thing is a micro data value: Text, List, or *Item. A nil Thing stands for
// an absent value and is skipped wherever it appears.
type Thing interface {
	thing()
}

// Text is a scalar string value.
type Text string

// List is an ordered sequence of values.
type List []Thing

// Item is a keyed record. Properties keep the order of the source document
// so traversal over them is deterministic. Keys beginning with "@" are
// metadata rather than data properties; "@type" is surfaced as Type.
type Item struct {
	// Type is the record's "@type" discriminator, empty when absent.
	Type string

	props []property
	index map[string]int
}

type property struct {
	name  string
	value Thing
}

func (Text) thing()  {}
func (List) thing()  {}
func (*Item) thing() {}

// NewItem creates an empty record with the given @type.
func NewItem(typ string) *Item {
	it := &Item{index: map[string]int{}}
	if typ != "" {
		it.Set("@type", Text(typ))
	}
	return it
}

// Set stores a property, replacing any earlier value under the same key but
// keeping the key's original position. Setting "@type" with a Text value
// also updates Type.
func (it *Item) Set(name string, value Thing) *Item {
	if it.index == nil {
		it.index = map[string]int{}
	}
	if name == "@type" {
		if t, ok := value.(Text); ok {
			it.Type = string(t)
		}
	}
	if i, ok := it.index[name]; ok {
		it.props[i].value = value
		return it
	}
	it.index[name] = len(it.props)
	it.props = append(it.props, property{name: name, value: value})
	return it
}

// Get returns the value stored under name, reporting whether the key exists.
// An existing key may hold a nil value (JSON null).
func (it *Item) Get(name string) (Thing, bool) {
	i, ok := it.index[name]
	if !ok {
		return nil, false
	}
	return it.props[i].value, true
}

// Names returns all keys in document order, metadata keys included.
func (it *Item) Names() []string {
	names := make([]string, len(it.props))
	for i, p := range it.props {
		names[i] = p.name
	}
	return names
}

// Len returns the number of keys, metadata keys included.
func (it *Item) Len() int { return len(it.props) }

// IsMetaKey reports whether a record key is metadata ("@"-prefixed) rather
// than a data property.
func IsMetaKey(name string) bool { return strings.HasPrefix(name, "@") }

// Parse decodes a JSON document into a Thing. Objects become Items with
// properties in document order, arrays become Lists, strings become Text.
// Numbers and booleans are carried as Text holding their literal form and
// null becomes a nil Thing — the input shape is trusted, not validated.
func Parse(data []byte) (Thing, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one JSON value from r and decodes it like Parse. Content
// after the first value is an error.
func Decode(r io.Reader) (Thing, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("microdata: decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("microdata: decode: trailing data after value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Thing, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeItem(dec)
		case '[':
			return decodeList(dec)
		}
		return nil, fmt.Errorf("unexpected %q", t.String())
	case string:
		return Text(t), nil
	case json.Number:
		return Text(t.String()), nil
	case bool:
		if t {
			return Text("true"), nil
		}
		return Text("false"), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeItem(dec *json.Decoder) (Thing, error) {
	it := &Item{index: map[string]int{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		it.Set(key, v)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return it, nil
}

func decodeList(dec *json.Decoder) (Thing, error) {
	var l List
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		l = append(l, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return l, nil
}
