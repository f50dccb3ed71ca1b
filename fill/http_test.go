package fill

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hazyhaar/domfill/fill/internal/store"
)

func testRouter(t *testing.T) (*Filler, chi.Router) {
	t.Helper()
	f := testFiller(t)
	r := chi.NewRouter()
	f.RegisterHTTP(r)
	return f, r
}

// doJSON performs one request against the router, JSON-encoding body when
// present, and returns the recorder.
func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHTTPHealth(t *testing.T) {
	// WHAT: /health pings the database and reports ok.
	// WHY: The liveness probe must fail when SQLite does.
	_, r := testRouter(t)

	rec := doJSON(t, r, "GET", "/health", nil)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[map[string]string](t, rec)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestHTTPRender(t *testing.T) {
	// WHAT: POST /api/render with a stored template name returns the
	// filled HTML and render metadata.
	// WHY: The primary remote surface of the service.
	f, r := testRouter(t)
	if err := f.PutTemplate(context.Background(), "person", personCard); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}

	rec := doJSON(t, r, "POST", "/api/render", map[string]any{
		"template": "person",
		"data":     json.RawMessage(personData),
	})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	res := decodeBody[Result](t, rec)
	if res.Template != "person" {
		t.Errorf("Template = %q, want person", res.Template)
	}
	if !strings.Contains(res.HTML, "Ada Lovelace") {
		t.Errorf("HTML missing filled name:\n%s", res.HTML)
	}
}

func TestHTTPRenderFragment(t *testing.T) {
	// WHAT: POST /api/render with inline fragment markup.
	// WHY: Callers without stored templates use the same endpoint.
	_, r := testRouter(t)

	rec := doJSON(t, r, "POST", "/api/render", map[string]any{
		"fragment": `<div itemscope><p itemprop="msg">old</p></div>`,
		"data":     map[string]any{"@type": "Note", "msg": "hi"},
	})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	res := decodeBody[Result](t, rec)
	if !strings.Contains(res.HTML, ">hi</p>") {
		t.Errorf("HTML = %q, want filled paragraph", res.HTML)
	}
}

func TestHTTPRenderValidation(t *testing.T) {
	// WHAT: Neither or both of template/fragment → 400.
	// WHY: The two sources are exclusive; silent preference would mask
	// caller bugs.
	_, r := testRouter(t)

	for name, body := range map[string]map[string]any{
		"neither": {"data": map[string]any{}},
		"both":    {"template": "a", "fragment": "<p></p>"},
	} {
		rec := doJSON(t, r, "POST", "/api/render", body)
		if rec.Code != 400 {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestHTTPRenderStatusMapping(t *testing.T) {
	// WHAT: Service sentinels map to 404 and 413.
	// WHY: HTTP callers retry on 5xx; caller faults must stay 4xx.
	f, r := testRouter(t)

	rec := doJSON(t, r, "POST", "/api/render", map[string]any{"template": "ghost"})
	if rec.Code != 404 {
		t.Errorf("absent template: status = %d, want 404", rec.Code)
	}

	f.cfg.MaxDataBytes = 8
	rec = doJSON(t, r, "POST", "/api/render", map[string]any{
		"fragment": "<p>x</p>",
		"data":     strings.Repeat("a", 32),
	})
	if rec.Code != 413 {
		t.Errorf("oversized data: status = %d, want 413", rec.Code)
	}
}

func TestHTTPTemplateCRUD(t *testing.T) {
	// WHAT: PUT, GET, list, DELETE on /api/templates round-trip.
	// WHY: Remote template management is how deployments ship markup.
	_, r := testRouter(t)

	rec := doJSON(t, r, "PUT", "/api/templates/card", map[string]string{"html": `<p itemprop="msg">x</p>`})
	if rec.Code != 200 {
		t.Fatalf("put: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, "GET", "/api/templates/card", nil)
	if rec.Code != 200 {
		t.Fatalf("get: status = %d", rec.Code)
	}
	tpl := decodeBody[store.Template](t, rec)
	if tpl.Name != "card" || tpl.HTML != `<p itemprop="msg">x</p>` {
		t.Errorf("template = %+v", tpl)
	}

	rec = doJSON(t, r, "GET", "/api/templates", nil)
	list := decodeBody[[]store.Template](t, rec)
	if len(list) != 1 {
		t.Fatalf("list len = %d, want 1", len(list))
	}

	rec = doJSON(t, r, "DELETE", "/api/templates/card", nil)
	if rec.Code != 200 {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = doJSON(t, r, "GET", "/api/templates/card", nil)
	if rec.Code != 404 {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, r, "DELETE", "/api/templates/card", nil)
	if rec.Code != 404 {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestHTTPPutTemplateRejectsEmptyMarkup(t *testing.T) {
	// WHAT: Element-free markup → 400 with the validation message.
	// WHY: The store must never hold a template that cannot render.
	_, r := testRouter(t)

	rec := doJSON(t, r, "PUT", "/api/templates/bad", map[string]string{"html": "no elements here"})
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeBody[map[string]string](t, rec)
	if !strings.Contains(resp["error"], "no element") {
		t.Errorf("error = %q, want mention of missing element", resp["error"])
	}
}

func TestHTTPPreview(t *testing.T) {
	// WHAT: POST /api/preview returns markdown.
	// WHY: Same render path, different serialization — worth one probe.
	f, r := testRouter(t)
	if err := f.PutTemplate(context.Background(), "person", personCard); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}

	rec := doJSON(t, r, "POST", "/api/preview", map[string]any{
		"template": "person",
		"data":     json.RawMessage(personData),
	})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	res := decodeBody[PreviewResult](t, rec)
	if !strings.Contains(res.Markdown, "# Ada Lovelace") {
		t.Errorf("Markdown missing heading:\n%s", res.Markdown)
	}
}

func TestHTTPStats(t *testing.T) {
	// WHAT: GET /api/stats returns live counters.
	// WHY: Dashboards scrape this endpoint.
	f, r := testRouter(t)
	ctx := context.Background()
	if err := f.PutTemplate(ctx, "note", `<p itemprop="m">x</p>`); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	if _, err := f.Render(ctx, "note", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	rec := doJSON(t, r, "GET", "/api/stats", nil)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decodeBody[Stats](t, rec)
	if st.Templates != 1 || st.Renders != 1 {
		t.Errorf("Templates/Renders = %d/%d, want 1/1", st.Templates, st.Renders)
	}
}
