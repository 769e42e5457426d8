package transform_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/papercomputeco/textstream/pkg/transform"
)

var _ = Describe("Registry", func() {
	var (
		registry *transform.Registry
		logs     *observer.ObservedLogs
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zapcore.DebugLevel)
		registry = transform.Default(zap.New(core))
	})

	Describe("Transform", func() {
		Context("for the agent provider", func() {
			It("extracts content from choices deltas", func() {
				raw := `{"choices":[{"delta":{"messages":[{"content":"hello"}]}}]}`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal("hello"))
			})

			It("concatenates message and content of one delta", func() {
				raw := `{"choices":[{"delta":{"content":"world","message":{"content":"hello "}}}]}`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal("hello world"))
			})

			It("concatenates every choice in order", func() {
				raw := `{"choices":[{"delta":{"content":"a"}},{"delta":{"segments":[{"text":"b"}]}}]}`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal("ab"))
			})

			It("unescapes a backslash-escaped payload", func() {
				raw := `{\"choices\":[{\"delta\":{\"content\":\"escaped\"}}]}`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal("escaped"))
			})

			It("unwraps a payload double-encoded as a JSON string", func() {
				raw := `"{\"choices\":[{\"delta\":{\"content\":\"wrapped\"}}]}"`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal("wrapped"))
			})

			It("preserves escaped backslashes while unescaping", func() {
				raw := `{\"choices\":[{\"delta\":{\"content\":\"a\\\\b\"}}]}`
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal(`a\b`))
			})

			It("passes other events through unchanged", func() {
				Expect(registry.Transform(transform.Agent, "error", `{"code":1}`)).To(Equal(`{"code":1}`))
			})
		})

		Context("for the openai provider", func() {
			It("extracts delta content", func() {
				raw := `{"id":"chatcmpl-1","choices":[{"delta":{"role":"assistant","content":"Hi"}}]}`
				Expect(registry.Transform(transform.OpenAI, "message", raw)).To(Equal("Hi"))
			})

			It("yields nothing for usage-only chunks", func() {
				raw := `{"choices":[],"usage":{"prompt_tokens":3}}`
				Expect(registry.Transform(transform.OpenAI, "message", raw)).To(BeEmpty())
			})
		})

		Context("for the anthropic provider", func() {
			It("extracts text deltas", func() {
				raw := `{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello"}}`
				Expect(registry.Transform(transform.Anthropic, "content_block_delta", raw)).To(Equal("Hello"))
			})

			It("swallows lifecycle events", func() {
				raw := `{"type":"message_start","message":{"id":"msg_1","content":[]}}`
				Expect(registry.Transform(transform.Anthropic, "message_start", raw)).To(BeEmpty())
			})

			It("passes unknown events through", func() {
				Expect(registry.Transform(transform.Anthropic, "error", "overloaded")).To(Equal("overloaded"))
			})
		})

		It("passes data through for unknown providers without logging", func() {
			Expect(registry.Transform("mystery", "message", "not json")).To(Equal("not json"))
			Expect(logs.Len()).To(Equal(0))
		})

		Context("with a malformed payload", func() {
			const raw = `{"choices":[{"delta":` // truncated

			It("fails open and returns the raw data", func() {
				Expect(registry.Transform(transform.Agent, "message", raw)).To(Equal(raw))
			})

			It("logs a warning with provider and event but not the payload", func() {
				registry.Transform(transform.Agent, "message", raw)

				warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
				Expect(warnings).To(HaveLen(1))

				fields := warnings[0].ContextMap()
				Expect(fields).To(HaveKeyWithValue("provider", transform.Agent))
				Expect(fields).To(HaveKeyWithValue("event", "message"))
				Expect(fields).To(HaveKeyWithValue("payload_bytes", int64(len(raw))))
				Expect(fields).NotTo(HaveKey("payload"))
			})

			It("keeps transforming later events", func() {
				registry.Transform(transform.Agent, "message", raw)
				next := `{"choices":[{"delta":{"content":"still here"}}]}`
				Expect(registry.Transform(transform.Agent, "message", next)).To(Equal("still here"))
			})
		})

		It("returns empty data unchanged without a warning", func() {
			Expect(registry.Transform(transform.Agent, "message", "")).To(BeEmpty())
			Expect(logs.FilterLevelExact(zapcore.WarnLevel).Len()).To(Equal(0))
		})

		It("is safe for concurrent sessions", func() {
			raw := `{"choices":[{"delta":{"content":"x"}}]}`

			var wg sync.WaitGroup
			results := make([]string, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					results[i] = registry.Transform(transform.Agent, "message", raw)
				}(i)
			}
			wg.Wait()

			for _, r := range results {
				Expect(r).To(Equal("x"))
			}
		})
	})

	Describe("Lookup", func() {
		It("returns the first matching transformer", func() {
			t, ok := registry.Lookup(transform.OpenAI, "message")
			Expect(ok).To(BeTrue())
			Expect(t.Provider()).To(Equal(transform.OpenAI))
		})

		It("reports no match for unhandled events", func() {
			_, ok := registry.Lookup(transform.OpenAI, "ping")
			Expect(ok).To(BeFalse())
		})
	})

	It("lists providers in registration order", func() {
		Expect(registry.Providers()).To(Equal(transform.SupportedProviders()))
	})
})

var _ = Describe("New", func() {
	It("creates every supported transformer", func() {
		for _, name := range transform.SupportedProviders() {
			t, err := transform.New(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Provider()).To(Equal(name))
		}
	})

	It("rejects unknown providers", func() {
		_, err := transform.New("nope")
		Expect(err).To(MatchError(ContainSubstring(`unknown provider: "nope"`)))
	})
})
