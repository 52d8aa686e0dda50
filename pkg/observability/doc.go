/*
Package observability turns dialog lifecycle hooks into Prometheus metrics
and structured audit logs.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	engine := dialog.NewEngine(client, dialog.WithLifecycleHooks(hooks))
*/
package observability
