package client

import (
	"github.com/spf13/cobra"
)

// NewConsumerCommand constructs the `consumer` command group.
func NewConsumerCommand(env EnvFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "consumer",
		Short: "Measure stream latency and throughput",
	}
	root.AddCommand(newLocalCommand(env), newFeedCommand(env))
	return root
}
