package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/views"
)

// ============================================================================
// PAGES
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/views/"+views.Home.Slug(), http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	page, err := s.render(r)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.page(w, page, RequestIDFrom(r.Context())); err != nil {
		s.logger.Error("failed to write page", zap.String("view", page.Slug), zap.Error(err))
	}
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	page, err := s.render(r)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// render resolves the view named by the slug path value and renders it
// with the request's query parameters.
func (s *Server) render(r *http.Request) (*views.Page, error) {
	kind, err := views.ParseKind(r.PathValue("slug"))
	if err != nil {
		return nil, err
	}
	v, err := views.FromParams(kind, r.URL.Query())
	if err != nil {
		return nil, err
	}
	return v.Render(r.Context(), s.data)
}

// ============================================================================
// API
// ============================================================================

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, features.Schema())
}

type health struct {
	Status string   `json:"status"`
	Loaded []string `json:"loaded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok", Loaded: []string{}}
	for _, res := range s.data.Cache.Loaded() {
		h.Loaded = append(h.Loaded, string(res))
	}
	writeJSON(w, http.StatusOK, h)
}

// ============================================================================
// DOWNLOADS
// ============================================================================

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	res, err := dataset.ParseResource(r.PathValue("resource"))
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	t, err := s.data.Table(r.Context(), res)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	name := s.data.Cache.Files().Name(res)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := t.WriteCSV(w, dataset.WithBOM()); err != nil {
		s.logger.Error("failed to write csv", zap.String("resource", string(res)), zap.Error(err))
	}
}

// ============================================================================
// ERRORS
// ============================================================================

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, views.ErrUnknownView), errors.Is(err, dataset.ErrUnknownResource):
		return http.StatusNotFound
	case errors.Is(err, views.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dataset.ErrResourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.logError(r, err)
	writeJSON(w, status, errorBody{
		Error:     err.Error(),
		Status:    status,
		RequestID: RequestIDFrom(r.Context()),
	})
}

func (s *Server) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.logError(r, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if werr := s.pages.error(w, status, err, RequestIDFrom(r.Context())); werr != nil {
		s.logger.Error("failed to write error page", zap.Error(werr))
	}
}

func (s *Server) logError(r *http.Request, err error) int {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("view failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
	}
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
