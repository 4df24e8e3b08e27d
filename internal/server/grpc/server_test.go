package grpcserver

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/streamlat/internal/config"
	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/runtime"
	"github.com/rzbill/streamlat/internal/transport"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

func start(t *testing.T, capacity int) (*Server, *grpc.ClientConn) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Producer.QueueCapacity = capacity
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	srv := New(rt)
	lis := bufconn.Listen(bufSize)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()
	conn, err := transport.Dial(transport.Endpoint{Scheme: "http", Address: "bufnet:0"},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return srv, conn
}

func TestHealthOverGRPC(t *testing.T) {
	_, conn := start(t, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := healthpb.NewHealthClient(conn)
	for _, svc := range []string{"", "local.TimeProducer"} {
		res, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("check %q: %v", svc, err)
		}
		if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("status %q=%v", svc, res.GetStatus())
		}
	}
}

type countingReporter struct {
	samples int
	limit   int
	cancel  context.CancelFunc
}

func (r *countingReporter) Latency(s consumer.Sample) {
	r.samples++
	if r.samples == r.limit {
		r.cancel()
	}
}
func (r *countingReporter) Throughput(consumer.Window) {}
func (r *countingReporter) StreamError(error)          {}

// End to end: the consumer measures the producer's stream, then disconnects,
// and the server's producer loop terminates.
func TestStreamTimesEndToEnd(t *testing.T) {
	srv, conn := start(t, 32)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := transport.NewLocalClient(conn).StreamTimes(ctx)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	rep := &countingReporter{limit: 500, cancel: cancel}
	if err := consumer.Run(src, rep); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.samples < 500 {
		t.Fatalf("samples=%d", rep.samples)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(srv.Times().Subscriptions()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("producer loop still running after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseEndsStreams(t *testing.T) {
	srv, conn := start(t, 8)
	src, err := transport.NewLocalClient(conn).StreamTimes(context.Background())
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if _, err := src.Recv(); err != nil {
		t.Fatalf("first recv: %v", err)
	}
	go srv.Close()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("stream did not end after Close")
		default:
		}
		if _, err := src.Recv(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("stream ended with %v, want a clean end", err)
			}
			return
		}
	}
}
