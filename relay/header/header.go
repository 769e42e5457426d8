// Package header provides header filtering for the textstream relay.
//
// The relay sits between a client and an upstream provider like so:
//
//	Client <--> Relay <--> Upstream Provider
//
// and each leg negotiates compression, hops and encoding independently.
package header

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ProviderHeader optionally names the provider whose payloads a request's
// response stream carries. It is consumed by the relay and never forwarded.
const ProviderHeader = "X-Textstream-Provider"

// SessionHeader carries the session ID back to the client.
const SessionHeader = "X-Textstream-Session"

// Handler manages headers between relay connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// skipRequest is the set of request headers (client --> relay --> upstream)
// that are not forwarded upstream.
var skipRequest = map[string]struct{}{
	// Hop-by-hop.
	"Connection": {},

	// Rewritten by http.Transport to match the upstream URL.
	"Host": {},

	// Stripped so http.Transport negotiates gzip itself and hands the
	// reassembler a decompressed body.
	"Accept-Encoding": {},

	// Request bodies are re-sent whole.
	"Content-Length": {},

	ProviderHeader: {},
}

// skipResponse is the set of upstream response headers not copied back when an
// upstream error is relayed verbatim. Streamed sessions set their own headers.
var skipResponse = map[string]struct{}{
	"Connection":        {},
	"Transfer-Encoding": {},
	"Content-Encoding":  {},
	"Content-Length":    {},
}

// SetUpstreamRequestHeaders copies request headers from the Fiber context to
// the outgoing http.Request, filtering headers that should not reach the upstream.
func (h *Handler) SetUpstreamRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if _, skip := skipRequest[k]; !skip {
			req.Header.Set(k, string(value))
		}
	})
}

// SetClientResponseHeaders copies upstream response headers to the Fiber
// context, filtering hop-by-hop and body-describing headers.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for k, v := range resp.Header {
		if _, skip := skipResponse[k]; !skip {
			c.Set(k, strings.Join(v, ", "))
		}
	}
}

// SetEventStreamHeaders marks the client response as a server-sent event stream.
func (h *Handler) SetEventStreamHeaders(c *fiber.Ctx, sessionID string) {
	c.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(SessionHeader, sessionID)
}

// Provider returns the trimmed provider header value, or fallback when absent.
func (h *Handler) Provider(c *fiber.Ctx, fallback string) string {
	if p := strings.TrimSpace(c.Get(ProviderHeader)); p != "" {
		return strings.ToLower(p)
	}
	return fallback
}

// IsEventStream reports whether a Content-Type value names a server-sent
// event body.
func IsEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}
