package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/feed"
	"github.com/rzbill/streamlat/internal/schema"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var (
	streamTimesDesc = &grpc.StreamDesc{StreamName: "StreamTimes", ServerStreams: true}
	subscribeDesc   = &grpc.StreamDesc{StreamName: "Subscribe", ServerStreams: true, ClientStreams: true}
)

// LocalClient reads the producer's time stream.
type LocalClient struct {
	conn grpc.ClientConnInterface
}

// NewLocalClient wraps conn.
func NewLocalClient(conn grpc.ClientConnInterface) *LocalClient {
	return &LocalClient{conn: conn}
}

// StreamTimes opens the stream and returns its items, text-encoded.
func (c *LocalClient) StreamTimes(ctx context.Context) (consumer.Source, error) {
	cs, err := open(ctx, c.conn, streamTimesDesc, schema.StreamTimesMethod, schema.NewEmpty())
	if err != nil {
		return nil, err
	}
	return &streamSource{ctx: ctx, cs: cs, newMsg: schema.NewTimeMessage, decode: schema.DecodeTime}, nil
}

// FeedClient subscribes to a Geyser feed.
type FeedClient struct {
	conn grpc.ClientConnInterface
}

// NewFeedClient wraps conn. Credentials are attached by conn's interceptors.
func NewFeedClient(conn grpc.ClientConnInterface) *FeedClient {
	return &FeedClient{conn: conn}
}

// Subscribe sends req once and returns the update stream, natively encoded.
func (c *FeedClient) Subscribe(ctx context.Context, req feed.SubscribeRequest) (consumer.Source, error) {
	cs, err := open(ctx, c.conn, subscribeDesc, schema.SubscribeMethod, req.Proto())
	if err != nil {
		return nil, err
	}
	return &streamSource{ctx: ctx, cs: cs, newMsg: schema.NewSubscribeUpdate, decode: schema.DecodeUpdate}, nil
}

// open starts a stream, sends the single request and half-closes.
func open(ctx context.Context, conn grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, req any) (grpc.ClientStream, error) {
	cs, err := conn.NewStream(ctx, desc, method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, method, err)
	}
	// io.EOF means the server already ended the stream; RecvMsg reports why.
	if err := cs.SendMsg(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: send: %v", ErrConnect, method, err)
	}
	if err := cs.CloseSend(); err != nil {
		return nil, fmt.Errorf("%w: %s: close send: %v", ErrConnect, method, err)
	}
	return cs, nil
}

type streamSource struct {
	ctx    context.Context
	cs     grpc.ClientStream
	newMsg func() *dynamicpb.Message
	decode func(protoreflect.Message) (consumer.Item, error)
}

func (s *streamSource) Recv() (consumer.Item, error) {
	m := s.newMsg()
	if err := s.cs.RecvMsg(m); err != nil {
		if errors.Is(err, io.EOF) {
			return consumer.Item{}, io.EOF
		}
		if status.Code(err) == codes.Canceled && s.ctx.Err() != nil {
			return consumer.Item{}, io.EOF
		}
		return consumer.Item{}, err
	}
	return s.decode(m)
}
