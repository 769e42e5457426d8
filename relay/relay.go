// Package relay provides a streaming relay that forwards requests to an
// upstream provider and re-streams the response as clean text fragments.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/eventstream"
	"github.com/papercomputeco/textstream/pkg/sentinel"
	"github.com/papercomputeco/textstream/pkg/stream"
	"github.com/papercomputeco/textstream/pkg/transform"
	"github.com/papercomputeco/textstream/pkg/utils"
	"github.com/papercomputeco/textstream/relay/header"
	"github.com/papercomputeco/textstream/relay/worker"
)

const (
	eventDone  = "done"
	eventError = "error"
)

// ErrorResponse is the JSON body of relay-generated errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// completion is the payload of the terminal "done" event.
type completion struct {
	SessionID string `json:"session_id"`
	Satisfied bool   `json:"satisfied"`
	Content   string `json:"content"`
}

// Relay forwards client requests upstream and turns each streamed response
// into text fragments. Every finished session is published asynchronously
// through the worker pool.
type Relay struct {
	config        Config
	registry      *transform.Registry
	sentinel      *sentinel.Sentinel
	workerPool    *worker.Pool
	logger        *zap.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
}

// New creates a new Relay publishing session events through publisher.
func New(config Config, publisher eventstream.Publisher, logger *zap.Logger) (*Relay, error) {
	if config.UpstreamURL == "" {
		return nil, errors.New("upstream URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := transform.Default(logger)
	if !slices.Contains(registry.Providers(), config.ProviderType) {
		logger.Warn("no transformer for default provider, event data is relayed unchanged",
			zap.String("provider", config.ProviderType),
		)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StreamRequestBody:     true,
	})

	app.Use(compress.New())

	wp, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	r := &Relay{
		config:        config,
		registry:      registry,
		sentinel:      sentinel.New(config.Marker),
		workerPool:    wp,
		logger:        logger,
		server:        app,
		headerHandler: header.NewHandler(),
		httpClient:    &http.Client{},
	}

	app.Post("/*", r.handleRelay)

	return r, nil
}

// Run starts the relay server on the configured listening address.
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		zap.String("listen", r.config.ListenAddr),
		zap.String("upstream", r.config.UpstreamURL),
		zap.String("provider", r.config.ProviderType),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay server using the provided listener.
func (r *Relay) RunWithListener(listener net.Listener) error {
	r.logger.Info("starting relay server",
		zap.String("listen", listener.Addr().String()),
		zap.String("upstream", r.config.UpstreamURL),
	)

	return r.server.Listener(listener)
}

// Close shuts down the server, then drains the worker pool and closes the publisher.
func (r *Relay) Close() error {
	return errors.Join(r.server.Shutdown(), r.workerPool.Close())
}

// handleRelay forwards the request upstream and streams the decoded text back.
func (r *Relay) handleRelay(c *fiber.Ctx) error {
	startTime := time.Now()
	path := c.Path()
	providerID := r.headerHandler.Provider(c, r.config.ProviderType)
	upstreamURL := r.config.UpstreamURL + path

	ctx, cancel := r.upstreamContext()

	body := bytes.Clone(c.Body())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(body))
	if err != nil {
		cancel()
		r.logger.Error("failed to create upstream request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	r.headerHandler.SetUpstreamRequestHeaders(c, httpReq)

	r.logger.Debug("forwarding request to upstream",
		zap.String("url", upstreamURL),
		zap.String("provider", providerID),
	)

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		r.logger.Error("upstream request failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "upstream request failed"})
	}

	if httpResp.StatusCode != http.StatusOK {
		defer cancel()
		return r.relayVerbatim(c, httpResp, providerID)
	}

	if !header.IsEventStream(httpResp.Header.Get("Content-Type")) {
		defer cancel()
		r.logger.Debug("upstream response is not an event stream, relaying verbatim",
			zap.String("content_type", httpResp.Header.Get("Content-Type")),
		)
		return r.relayVerbatim(c, httpResp, providerID)
	}

	opts := []stream.Option{
		stream.WithProvider(providerID),
		stream.WithRegistry(r.registry),
		stream.WithSentinel(r.sentinel),
		stream.WithLogger(r.logger),
	}
	if r.config.ChunkSize > 0 {
		opts = append(opts, stream.WithChunkSize(r.config.ChunkSize))
	}
	sess := stream.New(ctx, httpResp.Body, opts...)

	r.headerHandler.SetEventStreamHeaders(c, sess.ID())

	// io.Pipe gives per-event backpressure: pw.Write blocks until fasthttp
	// has flushed the previous chunk to the client.
	pr, pw := io.Pipe()
	go r.pump(sess, pw, cancel, sessionInfo{
		path:      path,
		provider:  providerID,
		startedAt: startTime,
	})

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// relayVerbatim copies an upstream response that is not decoded (an error
// status or a non-streaming body) to the client unchanged.
func (r *Relay) relayVerbatim(c *fiber.Ctx, httpResp *http.Response, providerID string) error {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		r.logger.Error("failed to read upstream response", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to read upstream response"})
	}

	if httpResp.StatusCode != http.StatusOK {
		r.logger.Warn("upstream returned error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("provider", providerID),
			zap.Int("body_bytes", len(respBody)),
		)
	}

	r.headerHandler.SetClientResponseHeaders(c, httpResp)
	return c.Status(httpResp.StatusCode).Send(respBody)
}

// upstreamContext scopes one upstream exchange. The response is streamed after
// the handler returns and fasthttp recycles its ctx, so it cannot derive from it.
func (r *Relay) upstreamContext() (context.Context, context.CancelFunc) {
	if r.config.Timeout > 0 {
		return context.WithTimeout(context.Background(), r.config.Timeout)
	}
	return context.WithCancel(context.Background())
}

type sessionInfo struct {
	path      string
	provider  string
	startedAt time.Time
}

// pump writes every fragment of sess to pw as an SSE event, then the terminal
// done or error event, and enqueues the session-completed event.
func (r *Relay) pump(sess *stream.Session, pw *io.PipeWriter, cancel context.CancelFunc, info sessionInfo) {
	defer cancel()

	res, err := stream.Each(sess, func(fragment string) error {
		return writeEvent(pw, "", fragment)
	})

	var sessionErr string
	switch {
	case err == nil:
		check := res.Check
		r.logger.Debug("session relayed",
			zap.String("session_id", res.ID),
			zap.Int("fragment_count", res.Fragments),
			zap.Bool("satisfied", check.Satisfied),
			zap.String("content_preview", utils.Truncate(res.Text, 64)),
		)
		err = writeEvent(pw, eventDone, completion{
			SessionID: res.ID,
			Satisfied: check.Satisfied,
			Content:   check.Text(),
		})
		if err != nil {
			r.logger.Debug("client went away before completion", zap.String("session_id", res.ID), zap.Error(err))
		}
	case errors.Is(err, io.ErrClosedPipe):
		sessionErr = "client disconnected"
		r.logger.Debug("client disconnected", zap.String("session_id", res.ID))
	default:
		sessionErr = err.Error()
		r.logger.Warn("relayed session failed",
			zap.String("session_id", res.ID),
			zap.String("provider", info.provider),
			zap.Error(err),
		)
		_ = writeEvent(pw, eventError, ErrorResponse{Error: sessionErr})
	}
	pw.Close()

	completedAt := time.Now()
	r.workerPool.Enqueue(worker.Job{
		Event: eventstream.NewSessionCompletedEvent(
			eventstream.EventSource{
				Provider: info.provider,
				Upstream: r.config.UpstreamURL,
			},
			eventstream.RequestMeta{
				Path:        info.path,
				StartedAt:   info.startedAt,
				CompletedAt: completedAt,
				HTTPStatus:  http.StatusOK,
			},
			eventstream.SessionMeta{
				ID:        res.ID,
				Events:    res.Events,
				Fragments: res.Fragments,
				Satisfied: res.Check.Satisfied,
				Content:   res.Check.Text(),
				Error:     sessionErr,
			},
		),
	})
}

// writeEvent encodes v as JSON and writes one SSE event. An empty name writes
// an unnamed (message) event.
func writeEvent(w io.Writer, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	var buf bytes.Buffer
	if name != "" {
		buf.WriteString("event: ")
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")

	_, err = w.Write(buf.Bytes())
	return err
}
