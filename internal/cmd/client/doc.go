// Package client provides the `streamlat consumer` commands.
//
// Both commands open one stream, print a latency line per received item
// and a throughput line per report interval, and exit when the stream
// ends. A connection failure or mid-stream transport error is reported
// and the command exits non-zero; nothing is retried.
//
// Usage
//
//	# Measure the local time producer
//	streamlat consumer local --endpoint http://[::1]:50071
//
//	# Measure a Geyser feed, all account updates at processed commitment
//	streamlat consumer feed \
//	    --endpoint https://feed.example.com \
//	    --x-token "$TOKEN" \
//	    --commitment processed \
//	    --filter-name slot_account_updates
//
//	# Warn on slow samples and expose prometheus metrics
//	streamlat consumer local --slow 'latency_ms > 250' --metrics-addr 127.0.0.1:9465
//
// Notes
//
//   - Flags override the config file and STREAMLAT_* environment.
//   - --slow takes a CEL expression over latency_ms, kind, slot and now_ms.
//   - A malformed --x-token is not sent; a warning is logged instead.
package client
