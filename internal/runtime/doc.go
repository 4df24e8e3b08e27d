// Package runtime wires config, logging and the metrics registry into a
// single streamlat process. Producer and consumer commands both open one;
// services and servers take it as their dependency.
//
// Example:
//
//	cfg, _ := config.Load("")
//	rt, _ := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	m := metrics.NewProducer(rt.Registry())
package runtime
