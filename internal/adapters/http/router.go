package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bft-labs/inspectgw/pkg/log"
)

// Routes served by the router.
const (
	RouteSearch  = "/search"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// AllowedOrigins lists CORS origins. Empty or containing "*" allows any.
	AllowedOrigins []string

	// RedactStorageErrors replaces database messages in 500 responses with
	// a fixed text. The detail is still logged.
	RedactStorageErrors bool
}

// NewRouter builds the HTTP handler.
//
// Middleware order, outermost first: request id, access log, gorilla panic
// recovery, CORS, JSON panic recovery, then the mux routes (each wrapped for
// metrics). Panics in a route get the JSON 500 body; the gorilla handler
// only sees panics raised by CORS itself.
// A nil metrics gets a fresh registry; a nil logger logs nothing.
func NewRouter(cfg RouterConfig, searcher Searcher, state StateFunc, metrics *Metrics, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	h := &handler{
		searcher: searcher,
		state:    state,
		redact:   cfg.RedactStorageErrors,
		logger:   logger,
	}

	r := mux.NewRouter()
	r.Handle(RouteSearch, metrics.WrapHandler(RouteSearch, http.HandlerFunc(h.search))).Methods(http.MethodPost)
	r.Handle(RouteHealth, metrics.WrapHandler(RouteHealth, http.HandlerFunc(h.health))).Methods(http.MethodGet)
	r.Handle(RouteMetrics, metrics.Handler()).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins(cfg.AllowedOrigins)),
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", HeaderRequestID}),
		handlers.ExposedHeaders([]string{HeaderRequestID}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)

	return WithRequestID(WithAccessLog(logger, recovery(cors(WithRecovery(logger, r)))))
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
