// CLAUDE:SUMMARY HTTP API on chi: render, preview, template CRUD, stats, health.
package fill

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterHTTP mounts the fill API on a chi router.
func (f *Filler) RegisterHTTP(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := f.store.DB.PingContext(r.Context()); err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Post("/api/render", f.handleRender)
	r.Post("/api/preview", f.handlePreview)
	r.Get("/api/stats", f.handleStats)

	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", f.handleListTemplates)
		r.Get("/{name}", f.handleGetTemplate)
		r.Put("/{name}", f.handlePutTemplate)
		r.Delete("/{name}", f.handleDeleteTemplate)
	})
}

// renderRequest is the body of POST /api/render and /api/preview. Exactly
// one of template (a stored name) or fragment (inline markup) is set.
type renderRequest struct {
	Template string          `json:"template,omitempty"`
	Fragment string          `json:"fragment,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func (req *renderRequest) validate() error {
	switch {
	case req.Template == "" && req.Fragment == "":
		return errors.New("one of template or fragment is required")
	case req.Template != "" && req.Fragment != "":
		return errors.New("template and fragment are mutually exclusive")
	}
	return nil
}

func (f *Filler) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, 400, err)
		return
	}

	var (
		res *Result
		err error
	)
	if req.Template != "" {
		res, err = f.Render(r.Context(), req.Template, req.Data)
	} else {
		res, err = f.RenderFragment(r.Context(), req.Fragment, req.Data)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, res)
}

func (f *Filler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, 400, err)
		return
	}

	var (
		res *PreviewResult
		err error
	)
	if req.Template != "" {
		res, err = f.Preview(r.Context(), req.Template, req.Data)
	} else {
		res, err = f.PreviewFragment(r.Context(), req.Fragment, req.Data)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, res)
}

func (f *Filler) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := f.Stats(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, st)
}

func (f *Filler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := f.Templates(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, list)
}

func (f *Filler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := f.Template(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, t)
}

func (f *Filler) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := f.PutTemplate(r.Context(), name, req.HTML); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "stored", "name": name})
}

func (f *Filler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := f.DeleteTemplate(r.Context(), name); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted", "name": name})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return 404
	case errors.Is(err, ErrDataTooLarge):
		return 413
	case errors.Is(err, ErrNoElement), errors.Is(err, ErrBadData):
		return 400
	default:
		return 500
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
