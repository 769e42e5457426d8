// Package decodecmder provides the decode command, which runs a streaming
// session over a captured response body.
package decodecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/cliui"
	"github.com/papercomputeco/textstream/pkg/config"
	"github.com/papercomputeco/textstream/pkg/logger"
	"github.com/papercomputeco/textstream/pkg/sentinel"
	"github.com/papercomputeco/textstream/pkg/stream"
	"github.com/papercomputeco/textstream/pkg/transform"
)

// ErrMarkerMissing is returned with --require-marker when the text did not
// end with the completion marker.
var ErrMarkerMissing = errors.New("completion marker missing")

type decodeCommander struct {
	provider      string
	chunkSize     uint
	marker        string
	render        bool
	requireMarker bool
	quiet         bool
	debug         bool

	logger *zap.Logger
}

const decodeLongDesc string = `Decode a captured server-sent event stream.

Reads the raw response body from the given file, or stdin when no file is
given, and prints each text fragment as soon as it is decoded. When the
stream ends the completion check is reported on stderr.

Supported providers: agent, openai, anthropic. Any other provider prints
each event's data unchanged.

Examples:
  curl -sN https://host/v1/stream | textstream decode --provider agent
  textstream decode capture.sse --provider anthropic --render`

const decodeShortDesc string = "Decode a captured stream into text"

var decodeFlags = []string{
	config.FlagProvider,
	config.FlagChunkSize,
	config.FlagMarker,
}

func NewDecodeCmd() *cobra.Command {
	cmder := &decodeCommander{}

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, decodeFlags)
			cmder.provider = v.GetString("stream.provider")
			cmder.chunkSize = v.GetUint("stream.chunk_size")
			cmder.marker = v.GetString("stream.marker")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddUintFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagMarker, &cmder.marker)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Buffer the text and render it as markdown when the stream ends")
	cmd.Flags().BoolVar(&cmder.requireMarker, "require-marker", false, "Fail when the text does not end with the completion marker")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Do not report the completion check")

	return cmd
}

func (c *decodeCommander) run(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	c.logger = logger.NewLoggerWithWriters(c.debug, stderr)
	defer func() { _ = c.logger.Sync() }()

	registry := transform.Default(c.logger)
	if !slices.Contains(registry.Providers(), c.provider) {
		c.logger.Warn("no transformer for provider, printing event data unchanged",
			zap.String("provider", c.provider),
		)
	}

	body, name, err := c.open(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []stream.Option{
		stream.WithProvider(c.provider),
		stream.WithRegistry(registry),
		stream.WithSentinel(sentinel.New(c.marker)),
		stream.WithLogger(c.logger),
		stream.WithChunkSize(int(c.chunkSize)),
	}

	c.logger.Debug("decoding stream",
		zap.String("source", name),
		zap.String("provider", c.provider),
		zap.Uint("chunk_size", c.chunkSize),
	)

	start := time.Now()
	res, err := c.decode(ctx, body, stdout, opts)
	if err != nil {
		if !c.quiet {
			fmt.Fprintf(stderr, "\n  %s %s\n", cliui.FailMark, err)
		}
		return err
	}

	if !c.quiet {
		c.report(stderr, res, time.Since(start))
	}

	if c.requireMarker && !res.Check.Satisfied {
		return fmt.Errorf("%w: expected text to end with %q", ErrMarkerMissing, sentinel.New(c.marker).Marker())
	}

	return nil
}

// decode streams fragments to out, or buffers and renders them with --render.
func (c *decodeCommander) decode(ctx context.Context, body io.ReadCloser, out io.Writer, opts []stream.Option) (stream.Result, error) {
	sess := stream.New(ctx, body, opts...)

	if !c.render {
		res, err := stream.Each(sess, func(fragment string) error {
			_, werr := io.WriteString(out, fragment)
			return werr
		})
		if err == nil && res.Text != "" && !strings.HasSuffix(res.Text, "\n") {
			_, _ = io.WriteString(out, "\n")
		}
		return res, err
	}

	res, err := stream.Collect(sess)
	if err != nil {
		return res, err
	}

	rendered, rerr := cliui.RenderMarkdown(res.Check.Text(), cliui.IsTerminal(out))
	if rerr != nil {
		c.logger.Warn("could not render markdown, printing plain text", zap.Error(rerr))
	}
	_, err = io.WriteString(out, rendered)
	return res, err
}

func (c *decodeCommander) open(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("opening stream capture: %w", err)
	}
	return f, args[0], nil
}

func (c *decodeCommander) report(w io.Writer, res stream.Result, elapsed time.Duration) {
	status := "marker not found"
	if res.Check.Satisfied {
		status = "marker found"
	}

	fmt.Fprintf(w, "\n  %s %s %s\n",
		cliui.CheckMark(res.Check.Satisfied),
		cliui.KeyStyle.Render(status),
		cliui.DimStyle.Render(fmt.Sprintf("(%d events, %d fragments, %s)",
			res.Events, res.Fragments, cliui.FormatDuration(elapsed))),
	)
	fmt.Fprintf(w, "  %s %s\n\n",
		cliui.DimStyle.Render("session"),
		cliui.ValueStyle.Render(res.ID),
	)
}
