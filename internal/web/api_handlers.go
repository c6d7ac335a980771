package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/evcraddock/staylist/internal/listing"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// rateLimit rejects requests beyond the configured API rate.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			apiError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireToken guards catalog writes with the configured bearer token.
// Writes are disabled entirely when no token is configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			apiError(w, "catalog writes are disabled", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			apiError(w, "authorization required", http.StatusUnauthorized)
			return
		}

		key := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.token)) != 1 {
			apiError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.repo.List(r.Context())
	if err != nil {
		apiError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if props == nil {
		props = []*listing.Property{}
	}
	apiJSON(w, props, http.StatusOK)
}

func (s *Server) apiGetProperty(w http.ResponseWriter, r *http.Request) {
	prop, err := s.repo.GetByName(r.Context(), propertyName(r))
	if errors.Is(err, listing.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	apiJSON(w, prop, http.StatusOK)
}

func (s *Server) apiUpsertProperty(w http.ResponseWriter, r *http.Request) {
	var p listing.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		apiError(w, "name is required", http.StatusBadRequest)
		return
	}

	saved, err := s.repo.Upsert(r.Context(), &p)
	if err != nil {
		apiError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.invalidate(r, saved.Name)

	apiJSON(w, saved, http.StatusOK)
}

func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request) {
	name := propertyName(r)
	err := s.repo.Delete(r.Context(), name)
	if errors.Is(err, listing.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.invalidate(r, name)

	w.WriteHeader(http.StatusNoContent)
}
