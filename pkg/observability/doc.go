/*
Package observability turns controller lifecycle events into Prometheus
metrics and structured log records.

Both helpers return domain.LifecycleHooks, so they compose with
domain.ChainHooks and plug into toolshed.WithLifecycleHooks:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
	ctl, _ := toolshed.New(toolshed.WithLifecycleHooks(hooks))
*/
package observability
