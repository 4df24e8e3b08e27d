package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrConnect wraps failures to establish a stream.
var ErrConnect = errors.New("transport: connect")

// Endpoint is a parsed scheme://host:port address.
type Endpoint struct {
	Scheme string
	// Address is host:port.
	Address string
	TLS     bool
}

func (e Endpoint) String() string { return e.Scheme + "://" + e.Address }

// ParseEndpoint accepts http://host[:port], https://host[:port] or a bare
// host:port. http and bare addresses are plaintext; https uses TLS. A
// missing port defaults to 80 or 443.
func ParseEndpoint(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, errors.New("transport: empty endpoint")
	}
	if !strings.Contains(s, "://") {
		if _, _, err := net.SplitHostPort(s); err != nil {
			return Endpoint{}, fmt.Errorf("transport: endpoint %q: %w", s, err)
		}
		return Endpoint{Scheme: "http", Address: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: %w", s, err)
	}
	ep := Endpoint{Scheme: strings.ToLower(u.Scheme)}
	var defPort string
	switch ep.Scheme {
	case "http":
		defPort = "80"
	case "https":
		defPort = "443"
		ep.TLS = true
	default:
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: unsupported scheme %q", s, u.Scheme)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: missing host", s)
	}
	if u.Path != "" && u.Path != "/" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: unexpected path %q", s, u.Path)
	}
	port := u.Port()
	if port == "" {
		port = defPort
	}
	ep.Address = net.JoinHostPort(u.Hostname(), port)
	return ep, nil
}

// Dial returns a lazily connecting client for ep. Extra options are
// appended after the transport credentials.
func Dial(ep Endpoint, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if ep.TLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	all := append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithUserAgent("streamlat"),
	}, opts...)
	conn, err := grpc.NewClient("passthrough:///"+ep.Address, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, ep, err)
	}
	return conn, nil
}
