// Package configcmder provides the config command for managing persistent
// textstream configuration stored in the .textstream/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent textstream configuration.

Configuration is stored as config.toml in the .textstream/ directory and
provides default values for command flags. CLI flags and TEXTSTREAM_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  stream.provider, stream.chunk_size, stream.marker,
  relay.listen, relay.upstream, relay.timeout,
  events.publisher, events.brokers, events.topic

Examples:
  textstream config set stream.provider anthropic
  textstream config set events.brokers kafka-1:9092,kafka-2:9092
  textstream config get relay.upstream
  textstream config list`

const configShortDesc string = "Manage persistent textstream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
