package api

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lehmann314159/tangocho/internal/models"
)

type ctxKey int

const wordRefKey ctxKey = iota

// JSONContentType sets the Content-Type header to application/json
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Logger writes one line per request: request id, method, path, status,
// response size and duration
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("[api] %s %s %s %d %dB %s",
			middleware.GetReqID(r.Context()), r.Method, r.URL.Path,
			status, ww.BytesWritten(), time.Since(start))
	})
}

// Recoverer turns a panic into a JSON 500 response
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("[api] %s panic in %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, rec)
			w.Header().Set("Content-Type", "application/json")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS lets the local study front end call the API from another origin
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		h.Set("Access-Control-Expose-Headers", "X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BearerAuth requires a bearer token for requests that change study data.
// Reads stay open, and an empty token disables the check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Method == http.MethodGet || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tangocho"`)
				writeError(w, http.StatusUnauthorized, "authorization header required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tangocho", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WordCtx resolves the {module} and {id} URL parameters into a WordRef and
// rejects modules the catalog does not know
func (h *Handler) WordCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		moduleType := chi.URLParam(r, "module")
		if _, ok := h.svc.Catalog.Module(moduleType); !ok {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "word id required")
			return
		}

		ref := models.NewWordRef(moduleType, models.WordID(id))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), wordRefKey, ref)))
	})
}

// wordRef returns the WordRef stored by WordCtx
func wordRef(r *http.Request) models.WordRef {
	ref, _ := r.Context().Value(wordRefKey).(models.WordRef)
	return ref
}
