// Package relaycmder provides the relay server command.
package relaycmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/config"
	"github.com/papercomputeco/textstream/pkg/eventstream"
	"github.com/papercomputeco/textstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/textstream/pkg/eventstream/nop"
	"github.com/papercomputeco/textstream/pkg/logger"
	"github.com/papercomputeco/textstream/relay"
)

type relayCommander struct {
	listen    string
	upstream  string
	provider  string
	timeout   string
	chunkSize uint
	marker    string

	publisher string
	brokers   []string
	topic     string

	jsonLogs bool
	logFile  string

	debug  bool
	logger *zap.Logger
}

const relayLongDesc string = `Run the streaming relay.

The relay forwards every POST request to the configured upstream URL and
re-streams the response as server-sent events: one data event per decoded
text fragment, then a "done" event carrying the completion check, or an
"error" event when the session fails.

The provider is taken from the X-Textstream-Provider request header, falling
back to --provider. Supported providers: agent, openai, anthropic. Events of
any other provider are relayed with their data unchanged.

Upstream responses that are not event streams, including error statuses, are
relayed verbatim.

Session-completed events are published to Kafka when brokers are configured.`

const relayShortDesc string = "Run the textstream relay server"

var relayFlags = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagProvider,
	config.FlagTimeout,
	config.FlagChunkSize,
	config.FlagMarker,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

func NewRelayCmd() *cobra.Command {
	cmder := &relayCommander{}
	var brokers string

	cmd := &cobra.Command{
		Use:   "relay",
		Short: relayShortDesc,
		Long:  relayLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, relayFlags)
			cmder.load(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagMarker, &cmder.marker)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.topic)
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write console logs as JSON")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

// load resolves every setting through viper (flag > env > file > default).
func (c *relayCommander) load(v *viper.Viper) {
	c.listen = v.GetString("relay.listen")
	c.upstream = v.GetString("relay.upstream")
	c.provider = v.GetString("stream.provider")
	c.timeout = v.GetString("relay.timeout")
	c.chunkSize = v.GetUint("stream.chunk_size")
	c.marker = v.GetString("stream.marker")
	c.publisher = v.GetString("events.publisher")
	c.topic = v.GetString("events.topic")

	c.brokers = nil
	for _, entry := range v.GetStringSlice("events.brokers") {
		c.brokers = append(c.brokers, config.SplitList(entry)...)
	}
}

func (c *relayCommander) run() error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	timeout, err := config.RelayConfig{Timeout: c.timeout}.TimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.timeout, err)
	}

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}

	r, err := relay.New(relay.Config{
		ListenAddr:   c.listen,
		UpstreamURL:  c.upstream,
		ProviderType: c.provider,
		Timeout:      timeout,
		ChunkSize:    int(c.chunkSize),
		Marker:       c.marker,
	}, publisher, c.logger)
	if err != nil {
		_ = publisher.Close()
		return fmt.Errorf("creating relay: %w", err)
	}
	defer r.Close()

	errChan := make(chan error, 1)
	go func() {
		if err := r.Run(); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}

// setupLogger builds the console logger and, with --log-file, tees a JSON
// logger writing to that file.
func (c *relayCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLogs),
		logger.WithColor(!c.jsonLogs),
	)

	if c.logFile == "" {
		c.logger = console
		return func() { _ = c.logger.Sync() }, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(
		console,
		logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f)),
	)
	return func() {
		_ = c.logger.Sync()
		_ = f.Close()
	}, nil
}

// newPublisher picks kafka when selected or when brokers are given, nop otherwise.
func (c *relayCommander) newPublisher() (eventstream.Publisher, error) {
	if c.publisher != config.PublisherKafka && len(c.brokers) == 0 {
		c.logger.Debug("session events disabled")
		return nop.NewPublisher(), nil
	}

	p, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.brokers,
		Topic:   c.topic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing session events to kafka",
		zap.Strings("brokers", c.brokers),
		zap.String("topic", c.topic),
	)
	return p, nil
}
