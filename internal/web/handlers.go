package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aquaticfungi/pubdb/internal/browse"
	"github.com/aquaticfungi/pubdb/internal/export"
	"github.com/aquaticfungi/pubdb/internal/logging"
	"github.com/aquaticfungi/pubdb/internal/publication"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

// Export scopes.
const (
	ScopePage = "page"
	ScopeAll  = "all"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// YearsResponse lists the year filter choices, "All" first.
type YearsResponse struct {
	Years []string `json:"years"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	v, err := storage.ValidateStore(s.service.Path())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if !v.Valid {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, v)
}

func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.service.FetchPage(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleGetPublication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "invalid publication id")
		return
	}
	p, err := s.service.Get(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("publication %d not found", id))
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.service.Years()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, YearsResponse{Years: append([]string{storage.AllYears}, years...)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.service.Stats(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var pubs []publication.Publication
	switch scope := q.Get("scope"); scope {
	case "", ScopePage:
		res, err := s.service.FetchPage(req)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		pubs = res.Publications
	case ScopeAll:
		if req.Filter().Empty() {
			pubs, err = s.service.LoadAll()
		} else {
			pubs, err = s.service.Find(req)
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown scope %q", scope))
		return
	}

	payload, err := export.Export(pubs, format, s.opts.ExportBaseName, s.now())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", payload.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload.Data); err != nil {
		logging.FromContext(r.Context()).Warn("Writing export failed", "error", err)
	}
}

// parseRequest reads the filter and pagination query parameters:
// q, year, min_citations, page, page_size.
func (s *Server) parseRequest(r *http.Request) (browse.Request, error) {
	q := r.URL.Query()
	req := browse.Request{
		Search:   strings.TrimSpace(q.Get("q")),
		Year:     strings.TrimSpace(q.Get("year")),
		Page:     1,
		PageSize: s.opts.PageSize,
	}

	ints := []struct {
		name string
		dst  *int
		min  int
	}{
		{"min_citations", &req.MinCitations, 0},
		{"page", &req.Page, 1},
		{"page_size", &req.PageSize, 1},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < p.min {
			return req, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = n
	}
	return req, nil
}

// respondError maps service errors to status codes and logs the cause.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var schemaErr *storage.SchemaError
	switch {
	case errors.Is(err, storage.ErrInvalidPage):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrStoreNotFound), errors.As(err, &schemaErr):
		status = http.StatusServiceUnavailable
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeError(w, r, status, err.Error())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("json encode error", "error", err)
	}
}
