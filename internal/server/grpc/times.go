package grpcserver

import (
	"context"

	"github.com/rzbill/streamlat/internal/event"
	"github.com/rzbill/streamlat/internal/schema"
	timesvc "github.com/rzbill/streamlat/internal/services/times"
	"google.golang.org/grpc"
)

// timeProducerServer is the handler type of the TimeProducer service.
type timeProducerServer interface {
	StreamTimes(grpc.ServerStream) error
}

type timesSvc struct {
	svc *timesvc.Service
}

type grpcSink struct {
	stream grpc.ServerStream
}

func (g grpcSink) Send(ev event.Event) error { return g.stream.SendMsg(schema.EncodeTime(ev)) }
func (g grpcSink) Context() context.Context  { return g.stream.Context() }

func (s *timesSvc) StreamTimes(stream grpc.ServerStream) error {
	if err := stream.RecvMsg(schema.NewEmpty()); err != nil {
		return err
	}
	return s.svc.Subscribe(grpcSink{stream: stream})
}

func streamTimesHandler(srv any, stream grpc.ServerStream) error {
	return srv.(timeProducerServer).StreamTimes(stream)
}

var timeProducerDesc = grpc.ServiceDesc{
	ServiceName: schema.TimeProducerService,
	HandlerType: (*timeProducerServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "StreamTimes",
		Handler:       streamTimesHandler,
		ServerStreams: true,
	}},
	Metadata: schema.LocalFile().Path(),
}

func registerTimeProducer(gs *grpc.Server, svc *timesvc.Service) {
	gs.RegisterService(&timeProducerDesc, &timesSvc{svc: svc})
}
