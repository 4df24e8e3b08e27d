package feed

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// TokenHeader is the metadata key carrying the feed credential.
const TokenHeader = "x-token"

// ErrInvalidToken is returned by TokenDecorator for a token that cannot be
// sent as a metadata value. The token is not attached.
var ErrInvalidToken = errors.New("feed: invalid x-token")

// Decorator rewrites outgoing metadata. It must not modify its argument.
type Decorator func(metadata.MD) metadata.MD

// Identity returns md unchanged.
func Identity(md metadata.MD) metadata.MD { return md }

// TokenDecorator returns a Decorator setting x-token. An empty token yields
// Identity. A malformed token also yields Identity, together with
// ErrInvalidToken so the caller can warn before connecting.
func TokenDecorator(token string) (Decorator, error) {
	if token == "" {
		return Identity, nil
	}
	if i := invalidHeaderChar(token); i >= 0 {
		return Identity, fmt.Errorf("%w: byte 0x%02x at offset %d", ErrInvalidToken, token[i], i)
	}
	return func(md metadata.MD) metadata.MD {
		out := md.Copy()
		out.Set(TokenHeader, token)
		return out
	}, nil
}

// invalidHeaderChar returns the offset of the first byte gRPC refuses in an
// ASCII header value, or -1. Printable ASCII is allowed.
func invalidHeaderChar(v string) int {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] > 0x7e {
			return i
		}
	}
	return -1
}

// Chain applies ds in order.
func Chain(ds ...Decorator) Decorator {
	return func(md metadata.MD) metadata.MD {
		for _, d := range ds {
			if d != nil {
				md = d(md)
			}
		}
		return md
	}
}

func decorate(ctx context.Context, d Decorator) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	out := d(md)
	if len(out) == 0 {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, out)
}

// UnaryInterceptor applies ds to every unary call's outgoing metadata.
func UnaryInterceptor(ds ...Decorator) grpc.UnaryClientInterceptor {
	d := Chain(ds...)
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(decorate(ctx, d), method, req, reply, cc, opts...)
	}
}

// StreamInterceptor applies ds to every stream's outgoing metadata.
func StreamInterceptor(ds ...Decorator) grpc.StreamClientInterceptor {
	d := Chain(ds...)
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		return streamer(decorate(ctx, d), desc, cc, method, opts...)
	}
}
