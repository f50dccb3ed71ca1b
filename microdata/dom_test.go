package microdata

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestFindPropertyDocumentOrder(t *testing.T) {
	n := parseOne(t, `<div>
		<section><span itemprop="name">first</span></section>
		<span itemprop="name">second</span>
	</div>`)
	got := findProperty(n, "name")
	if got == nil {
		t.Fatal("findProperty returned nil")
	}
	if textOf(got) != "first" {
		t.Errorf("found %q, want the first match in document order", textOf(got))
	}
}

func TestFindPropertyExcludesSelf(t *testing.T) {
	n := parseOne(t, `<div itemprop="name"><span itemprop="name">inner</span></div>`)
	got := findProperty(n, "name")
	if got == nil || textOf(got) != "inner" {
		t.Fatalf("want the descendant, not the element itself")
	}
}

func TestFindPropertySkipsTemplates(t *testing.T) {
	n := parseOne(t, `<div><template><span itemprop="name">hidden</span></template></div>`)
	if got := findProperty(n, "name"); got != nil {
		t.Errorf("matched inside template content: %q", textOf(got))
	}
}

func TestFindTemplate(t *testing.T) {
	n := parseOne(t, `<div>
		<template data-type="A"><i></i></template>
		<template data-type="B"><b></b></template>
	</div>`)
	tmpl := findTemplate(n, "B")
	if tmpl == nil {
		t.Fatal("template B not found")
	}
	if proto := firstElementChild(tmpl); proto == nil || proto.DataAtom != atom.B {
		t.Errorf("prototype = %v, want <b>", proto)
	}
	if findTemplate(n, "C") != nil {
		t.Error("found a template that does not exist")
	}
}

func TestCloneIndependence(t *testing.T) {
	orig := parseOne(t, `<p class="x"><span itemprop="name">text</span></p>`)
	clone := Clone(orig)

	setAttr(clone, "class", "y")
	setText(findProperty(clone, "name"), "changed")

	if got := getAttr(orig, "class"); got != "x" {
		t.Errorf("original class = %q after clone mutation", got)
	}
	if got := textOf(orig); got != "text" {
		t.Errorf("original text = %q after clone mutation", got)
	}
	if clone.Parent != nil {
		t.Error("clone should be detached")
	}
}

func TestDataset(t *testing.T) {
	n := parseOne(t, `<a data-display="host" data-rel="nofollow" href="x" class="y"></a>`)
	ds := Dataset(n)
	if len(ds) != 2 || ds["display"] != "host" || ds["rel"] != "nofollow" {
		t.Errorf("Dataset = %v", ds)
	}

	plain := parseOne(t, `<a href="x"></a>`)
	if ds := Dataset(plain); ds != nil {
		t.Errorf("Dataset with no data attrs = %v, want nil", ds)
	}
}

func TestSetAttr(t *testing.T) {
	n := parseOne(t, `<a href="old" class="k"></a>`)
	setAttr(n, "href", "new")
	setAttr(n, "title", "t")
	if got := getAttr(n, "href"); got != "new" {
		t.Errorf("href = %q", got)
	}
	if got := getAttr(n, "title"); got != "t" {
		t.Errorf("title = %q", got)
	}
	count := 0
	for _, a := range n.Attr {
		if a.Key == "href" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("href appears %d times, want 1", count)
	}
}

func TestSetText(t *testing.T) {
	n := parseOne(t, `<div><b>a</b>b<i>c</i></div>`)
	setText(n, "flat")
	if got := textOf(n); got != "flat" {
		t.Errorf("text = %q", got)
	}

	setText(n, "")
	if n.FirstChild != nil {
		t.Error("empty setText should leave no children")
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	const in = `<article><h1 itemprop="headline">T</h1><p>body</p></article>`
	nodes, err := ParseFragment(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got := RenderString(nodes...); got != in {
		t.Errorf("round trip:\n in  %s\n out %s", in, got)
	}
}

func TestFragmentMultipleRoots(t *testing.T) {
	nodes, err := ParseFragment(strings.NewReader(`<p>a</p><p>b</p>`))
	if err != nil {
		t.Fatal(err)
	}
	elems := 0
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elems++
		}
	}
	if elems != 2 {
		t.Errorf("got %d root elements, want 2", elems)
	}
	if first := FirstElement(nodes); first == nil || textOf(first) != "a" {
		t.Error("FirstElement should return the first root element")
	}
}

func TestFirstElementSkipsText(t *testing.T) {
	nodes, err := ParseFragment(strings.NewReader(`  leading text <span>s</span>`))
	if err != nil {
		t.Fatal(err)
	}
	first := FirstElement(nodes)
	if first == nil || first.DataAtom != atom.Span {
		t.Errorf("FirstElement = %v, want <span>", first)
	}
}

func TestRenderNodes(t *testing.T) {
	nodes, err := ParseFragment(strings.NewReader(`<b>x</b>`))
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := RenderNodes(&sb, nodes...); err != nil {
		t.Fatal(err)
	}
	if sb.String() != `<b>x</b>` {
		t.Errorf("RenderNodes = %q", sb.String())
	}
}
