// Package observability exposes pipeline metrics through Prometheus.
//
// Metrics plugs into the engine via domain.LifecycleHooks, so it can be merged
// with logging hooks or any other observer:
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	p := maslab.New(maslab.WithLifecycleHooks(m.Hooks()))
package observability
