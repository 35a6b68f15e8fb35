// Package app assembles the HTTP surface of the lead API.
package app

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/leadrelay/backend/internal/handler"
	"github.com/leadrelay/backend/internal/metrics"
	"github.com/leadrelay/backend/internal/repository"
	"github.com/leadrelay/backend/internal/service"
)

// Deps are the collaborators NewRouter wires into routes.
type Deps struct {
	DB          repository.DB // nil for the memory store
	Messages    service.MessageService
	Notifier    service.NotificationService
	Metrics     *metrics.Metrics
	StaticDir   string
	FrontendURL string
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(d Deps) http.Handler {
	h := handler.New(d.DB, d.FrontendURL)
	messageHandler := handler.NewMessageHandler(d.Messages, d.Notifier)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/messages", messageHandler.Create)
	mux.HandleFunc("GET /api/messages", messageHandler.List)
	mux.HandleFunc("/api", h.NotFound)
	mux.HandleFunc("/api/", h.NotFound)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// no method on the catch-all: "GET /" would conflict with "/api/"
	mux.Handle("/", handler.NewSPAHandler(d.StaticDir))

	var next http.Handler = mux
	next = handler.Instrument(d.Metrics)(next)
	next = h.CORS(next)
	next = handler.SecurityHeaders(next)
	next = handler.RequestLogger(next)
	next = handler.RequestID(next)
	return otelhttp.NewHandler(next, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	)
}
