package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/evcraddock/staylist/internal/cache"
	"github.com/evcraddock/staylist/internal/listing"
	"github.com/evcraddock/staylist/internal/metrics"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleList renders one card per stored property.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	props, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading properties: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.views.ListPage(&buf, props); err != nil {
		metrics.ObserveRender("list", "error")
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
		return
	}
	metrics.ObserveRender("list", "ok")
	writeHTML(w, buf.Bytes(), http.StatusOK)
}

// handleDetail renders the detail page for /property/{name}. Unknown names get
// the detail view's "not available" fallback with a 404.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	name := propertyName(r)
	key := cache.DetailKey(name)

	if s.pages != nil {
		page, ok, err := s.pages.Get(r.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("page cache read failed")
		}
		if ok {
			writeHTML(w, page, http.StatusOK)
			return
		}
	}

	prop, err := s.repo.GetByName(r.Context(), name)
	if err != nil && !errors.Is(err, listing.ErrNotFound) {
		http.Error(w, fmt.Sprintf("Error loading property: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.views.DetailPage(&buf, prop); err != nil {
		metrics.ObserveRender("detail", "error")
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
		return
	}

	if prop == nil {
		metrics.ObserveRender("detail", "fallback")
		writeHTML(w, buf.Bytes(), http.StatusNotFound)
		return
	}
	metrics.ObserveRender("detail", "ok")

	if s.pages != nil {
		if err := s.pages.Set(r.Context(), key, buf.Bytes(), s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("page cache write failed")
		}
	}
	writeHTML(w, buf.Bytes(), http.StatusOK)
}

// handleBooking renders the booking placeholder page.
func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.views.BookingPage(&buf); err != nil {
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes(), http.StatusOK)
}

// invalidate drops the cached detail page for name.
func (s *Server) invalidate(r *http.Request, name string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.Del(r.Context(), cache.DetailKey(name)); err != nil {
		log.Warn().Err(err).Str("name", name).Msg("page cache delete failed")
	}
}

func writeHTML(w http.ResponseWriter, body []byte, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}

// propertyName returns the {name} route parameter, unescaped. chi matches on
// the raw path when the request path carries escapes such as %2F.
func propertyName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
