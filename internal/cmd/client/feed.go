package client

import (
	"context"
	"errors"

	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/feed"
	"github.com/rzbill/streamlat/internal/runtime"
	"github.com/rzbill/streamlat/internal/transport"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
)

// newFeedCommand constructs the `consumer feed` subcommand.
func newFeedCommand(envFn EnvFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Measure a Geyser feed (all account updates)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			cfg := env.Config.Feed
			ep, err := transport.ParseEndpoint(stringFlag(cmd, "endpoint", cfg.Endpoint))
			if err != nil {
				return err
			}
			commitment, err := feed.ParseCommitment(stringFlag(cmd, "commitment", cfg.Commitment))
			if err != nil {
				return err
			}
			req, err := feed.NewBuilder().
				Accounts(stringFlag(cmd, "filter-name", cfg.FilterName), feed.AccountsFilter{}).
				Commitment(commitment).
				Build()
			if err != nil {
				return err
			}
			token := stringFlag(cmd, "x-token", cfg.XToken)

			return measure(cmd, env, func(ctx context.Context, rt *runtime.Runtime) (consumer.Source, error) {
				logger := rt.Logger().WithComponent("feed")
				dec, tokErr := feed.TokenDecorator(token)
				if errors.Is(tokErr, feed.ErrInvalidToken) {
					logger.Warn("x-token not attached", logpkg.Err(tokErr))
				}
				conn, err := transport.Dial(ep,
					grpc.WithUnaryInterceptor(feed.UnaryInterceptor(dec)),
					grpc.WithStreamInterceptor(feed.StreamInterceptor(dec)),
				)
				if err != nil {
					return nil, err
				}
				context.AfterFunc(ctx, func() { _ = conn.Close() })
				logger.Info("subscribing",
					logpkg.Str("endpoint", ep.String()),
					logpkg.Str("commitment", commitment.String()),
					logpkg.Bool("token_attached", token != "" && tokErr == nil),
				)
				logger.Debug("subscribe request", logpkg.Str("request", protojson.Format(req.Proto())))
				return transport.NewFeedClient(conn).Subscribe(ctx, req)
			})
		},
	}
	cmd.Flags().String("endpoint", "", "Feed endpoint (default feed.endpoint, http://127.0.0.1:10000)")
	cmd.Flags().String("x-token", "", "Credential sent as x-token metadata (default feed.x_token)")
	cmd.Flags().String("commitment", "", "processed|confirmed|finalized (default feed.commitment, processed)")
	cmd.Flags().String("filter-name", "", "Accounts filter label (default feed.filter_name, slot_account_updates)")
	measureFlags(cmd)
	return cmd
}
