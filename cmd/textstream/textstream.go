// Package textstreamcmder wires the textstream command tree.
package textstreamcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/textstream/cmd/textstream/config"
	decodecmder "github.com/papercomputeco/textstream/cmd/textstream/decode"
	relaycmder "github.com/papercomputeco/textstream/cmd/textstream/relay"
	versioncmder "github.com/papercomputeco/textstream/cmd/version"
)

const textstreamLongDesc string = `textstream turns streamed model responses into clean text.

It reassembles UTF-8 across arbitrary chunk boundaries, frames server-sent
events, extracts each provider's text payload and checks the finished text
for a completion marker.

  textstream decode [file]   Decode a captured stream from a file or stdin
  textstream relay           Relay requests upstream and re-stream clean text
  textstream config          Manage persistent configuration`

const textstreamShortDesc string = "textstream - streamed completion decoding"

func NewTextstreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "textstream",
		Short:         textstreamShortDesc,
		Long:          textstreamLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.textstream or ~/.textstream)")

	cmd.AddCommand(decodecmder.NewDecodeCmd())
	cmd.AddCommand(relaycmder.NewRelayCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
