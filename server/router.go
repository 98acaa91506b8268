package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"garland/server/handler"
)

// Route は全HTTPエンドポイントを組み立てます。
func Route(accept http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", accept)
	mux.Handle("/healthz", handler.NewHealthHandler())
	return otelhttp.NewHandler(mux, "garland.http")
}
