package timesvc

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rzbill/streamlat/internal/event"
	"github.com/rzbill/streamlat/internal/metrics"
	"github.com/rzbill/streamlat/internal/producer"
	"github.com/rzbill/streamlat/internal/queue"
	"github.com/rzbill/streamlat/internal/runtime"
	logpkg "github.com/rzbill/streamlat/pkg/log"
)

type active struct {
	loop *producer.Loop
	rx   *queue.Receiver[event.Event]
}

// Service owns the producer loops of all live subscriptions.
type Service struct {
	rt       *runtime.Runtime
	logger   logpkg.Logger
	metrics  *metrics.Producer
	capacity int

	mu   sync.Mutex
	subs map[string]active
}

// New constructs the service and registers its metrics with rt.
func New(rt *runtime.Runtime) *Service {
	return &Service{
		rt:       rt,
		logger:   rt.Logger().WithComponent("timesvc"),
		metrics:  metrics.NewProducer(rt.Registry()),
		capacity: rt.Config().Producer.QueueCapacity,
		subs:     map[string]active{},
	}
}

// Subscribe serves one subscription. It returns nil when the subscriber
// disconnects or the runtime closes, and the sink's error when a send fails.
// The producer loop has terminated by the time Subscribe returns.
func (s *Service) Subscribe(sink Sink) error {
	id := producer.NewSubscriptionID()
	tx, rx := queue.New[event.Event](s.capacity)
	loop := producer.NewLoop(tx,
		producer.WithSubscriptionID(id),
		producer.WithLogger(s.rt.Logger()),
		producer.WithObserver(s.metrics.Subscribed()),
	)
	s.track(id, active{loop: loop, rx: rx})

	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run()
	}()
	defer func() {
		rx.Close()
		<-done
		s.untrack(id)
	}()

	logger := s.logger.With(logpkg.SubscriptionID(id))
	logger.Info("subscriber connected", logpkg.Int("queue_capacity", rx.Cap()))

	ctx, cancel := context.WithCancel(sink.Context())
	defer cancel()
	go func() {
		select {
		case <-s.rt.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		ev, err := rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, queue.ErrReceiverGone) {
				return nil
			}
			return err
		}
		if err := sink.Send(ev); err != nil {
			logger.Debug("send failed", logpkg.Err(err))
			return err
		}
	}
}

func (s *Service) track(id string, a active) {
	s.mu.Lock()
	s.subs[id] = a
	s.mu.Unlock()
}

func (s *Service) untrack(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// Subscriptions lists live subscriptions ordered by id.
func (s *Service) Subscriptions() []Subscription {
	s.mu.Lock()
	out := make([]Subscription, 0, len(s.subs))
	for id, a := range s.subs {
		out = append(out, Subscription{ID: id, Queue: a.rx.Len(), Sent: a.loop.Sent()})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Disconnect drops a subscription's queue, ending its loop on the next send.
func (s *Service) Disconnect(id string) bool {
	s.mu.Lock()
	a, ok := s.subs[id]
	s.mu.Unlock()
	if ok {
		a.rx.Close()
	}
	return ok
}
