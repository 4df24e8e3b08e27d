package client

import (
	"context"

	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/runtime"
	"github.com/rzbill/streamlat/internal/transport"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"github.com/spf13/cobra"
)

// newLocalCommand constructs the `consumer local` subcommand.
func newLocalCommand(envFn EnvFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Measure the local time producer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			ep, err := transport.ParseEndpoint(stringFlag(cmd, "endpoint", env.Config.Consumer.Endpoint))
			if err != nil {
				return err
			}
			return measure(cmd, env, func(ctx context.Context, rt *runtime.Runtime) (consumer.Source, error) {
				conn, err := transport.Dial(ep)
				if err != nil {
					return nil, err
				}
				context.AfterFunc(ctx, func() { _ = conn.Close() })
				rt.Logger().Info("connecting", logpkg.Component("consumer"), logpkg.Str("endpoint", ep.String()))
				return transport.NewLocalClient(conn).StreamTimes(ctx)
			})
		},
	}
	cmd.Flags().String("endpoint", "", "Producer endpoint (default consumer.endpoint, http://[::1]:50071)")
	measureFlags(cmd)
	return cmd
}
