package httpserver

import (
	"net/http"

	"evtariff/internal/http/middleware"
)

// Routes groups HTTP handlers.
type Routes struct {
	RulesList     http.HandlerFunc
	RulesCreate   http.HandlerFunc
	RulesReplace  http.HandlerFunc
	RulesDelete   http.HandlerFunc
	DailyList     http.HandlerFunc
	DailyCreate   http.HandlerFunc
	DailyUpdate   http.HandlerFunc
	DailyDelete   http.HandlerFunc
	DailyDupe     http.HandlerFunc
	Matrix        http.HandlerFunc
	Resolve       http.HandlerFunc
	Live          http.HandlerFunc
	SessionCost   http.HandlerFunc
	SessionExport http.HandlerFunc
	Calendar      http.HandlerFunc
	Health        http.HandlerFunc
}

// NewRouter registers service endpoints. Rule-editing routes require a
// valid bearer token; read paths are open to the internal network.
func NewRouter(routes Routes, jwtSecret string) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(jwtSecret)
	guarded := func(handler http.HandlerFunc) http.HandlerFunc {
		return auth(handler).ServeHTTP
	}

	mux.Handle("/pricing/rules", byMethod(map[string]http.HandlerFunc{
		http.MethodGet:    routes.RulesList,
		http.MethodPost:   guarded(routes.RulesCreate),
		http.MethodPut:    guarded(routes.RulesReplace),
		http.MethodDelete: guarded(routes.RulesDelete),
	}))
	mux.Handle("/pricing/daily", byMethod(map[string]http.HandlerFunc{
		http.MethodGet:    routes.DailyList,
		http.MethodPost:   guarded(routes.DailyCreate),
		http.MethodPut:    guarded(routes.DailyUpdate),
		http.MethodDelete: guarded(routes.DailyDelete),
	}))
	mux.Handle("/pricing/daily/duplicate", method(http.MethodPost, guarded(routes.DailyDupe)))
	mux.Handle("/pricing/matrix", method(http.MethodGet, routes.Matrix))
	mux.Handle("/pricing/resolve", method(http.MethodGet, routes.Resolve))
	if routes.Live != nil {
		mux.Handle("/pricing/live", method(http.MethodGet, routes.Live))
	}
	mux.Handle("/sessions/cost", method(http.MethodGet, routes.SessionCost))
	mux.Handle("/sessions/cost/export", method(http.MethodGet, routes.SessionExport))
	mux.Handle("/calendar", method(http.MethodGet, routes.Calendar))
	mux.Handle("/health", method(http.MethodGet, routes.Health))
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

func byMethod(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok && handler != nil {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
