package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"causemap/pkg/module"
)

func echoMux(body string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
	return mux
}

func TestModule(t *testing.T) {
	t.Run("strips prefix before dispatch", func(t *testing.T) {
		m := module.New("/api", echoMux("ok"))
		router := module.NewRouter()
		router.Mount(m)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("response = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("middleware wraps inner router", func(t *testing.T) {
		m := module.New("/api", echoMux("ok"))
		m.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Test", "applied")
				next.ServeHTTP(w, r)
			})
		})

		router := module.NewRouter()
		router.Mount(m)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

		if rec.Header().Get("X-Test") != "applied" {
			t.Error("middleware was not applied")
		}
	})

	t.Run("unmatched prefix falls back to native mux", func(t *testing.T) {
		router := module.NewRouter()
		router.Mount(module.New("/api", echoMux("ok")))
		router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("healthy"))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Body.String() != "healthy" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("trailing slash normalized", func(t *testing.T) {
		router := module.NewRouter()
		router.Mount(module.New("/api", echoMux("ok")))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("code = %d", rec.Code)
		}
	})

	t.Run("invalid prefixes panic", func(t *testing.T) {
		for _, prefix := range []string{"", "api", "/api/v1"} {
			func() {
				defer func() {
					if recover() == nil {
						t.Errorf("New(%q) did not panic", prefix)
					}
				}()
				module.New(prefix, http.NewServeMux())
			}()
		}
	})
}
