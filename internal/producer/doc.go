// Package producer runs the per-subscription loop that stamps events from
// the clock and pushes them into a bounded queue as fast as it drains.
//
// A Loop has two states. It starts Running and moves to Terminated the
// first time a send fails, which only happens once the subscriber's side
// of the queue has been dropped. There is no other stop signal: the
// transport ends a subscription by closing the queue receiver.
//
//	tx, rx := queue.New[event.Event](queue.DefaultCapacity)
//	loop := producer.NewLoop(tx, producer.WithLogger(logger))
//	go loop.Run()
//	defer rx.Close()
package producer
