// Package httpserver serves the operational HTTP surface: prometheus
// metrics on /metrics and a liveness probe on /v1/healthz. The producer
// adds /v1/subscriptions listing live subscriptions.
//
// Example:
//
//	s := httpserver.New(rt, httpserver.WithSubscriptions(svc))
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":9464")
package httpserver
