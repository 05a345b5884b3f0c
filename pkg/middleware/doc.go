// Package middleware provides net/http middleware for the storagehub HTTP
// surface.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus request metrics middleware
//
// Both read the route pattern from go-chi/chi, so they are meant to be
// installed with chi's Router.Use:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	    middleware.OpenTelemetry(middleware.WithTracerName("storagehub")),
//	)
//
// # OpenTelemetry Middleware
//
// Each request gets a server span named after its method and route pattern.
// The span is stored in the request context, so handlers can add attributes:
//
//	span := trace.SpanFromContext(r.Context())
//	span.SetAttributes(attribute.String("storage.context", id))
//
// The tracer comes from the global provider unless WithTracerProvider is
// given.
//
// # Prometheus Metrics
//
// The metrics middleware exports:
//
//   - storagesync_http_requests_total{route,method,status}
//   - storagesync_http_request_duration_seconds{route,method}
//   - storagesync_http_requests_in_flight
//
// WebSocket requests are counted when the connection ends, so their duration
// is the lifetime of the connection.
package middleware
