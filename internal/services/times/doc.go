// Package timesvc implements the time stream served by the producer. Each
// subscription gets its own bounded queue and producer loop; the transport
// drains the queue into a Sink until the subscriber goes away.
//
// Example:
//
//	svc := timesvc.New(rt)
//	// Serve one subscription; returns when the client disconnects.
//	_ = svc.Subscribe(mySink)
package timesvc
