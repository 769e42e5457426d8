package sse

import (
	"errors"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fragments is a TextSource yielding preset fragments, then err (io.EOF by
// default).
type fragments struct {
	parts []string
	err   error
	reads int
}

func (f *fragments) Next() (string, error) {
	if len(f.parts) == 0 {
		if f.err != nil {
			return "", f.err
		}
		return "", io.EOF
	}
	f.reads++
	part := f.parts[0]
	f.parts = f.parts[1:]
	return part, nil
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with standard SSE events", func() {
			It("parses a single event", func() {
				r := NewReader(&fragments{parts: []string{"data: hello world\n\n"}})

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello world"))
				Expect(ev.Name).To(Equal(DefaultEventName))

				ev, err = r.Next()
				Expect(err).To(MatchError(io.EOF))
				Expect(ev).To(BeNil())
			})

			It("parses events split across arbitrary fragments", func() {
				r := NewReader(&fragments{parts: []string{
					"ev", "ent: content_block_delta\nda", "ta: {\"type\":", "\"delta\"}\n", "\ndata: second\n\n",
				}})

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Name).To(Equal("content_block_delta"))
				Expect(ev1.Data).To(Equal(`{"type":"delta"}`))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("second"))

				_, err = r.Next()
				Expect(err).To(MatchError(io.EOF))
			})

			It("does not pull more text while complete blocks are buffered", func() {
				src := &fragments{parts: []string{"data: a\n\ndata: b\n\n", "data: c\n\n"}}
				r := NewReader(src)

				_, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				_, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(src.reads).To(Equal(1))
			})
		})

		Context("with OpenAI-style SSE", func() {
			It("parses OpenAI streaming chunks", func() {
				r := NewReader(&fragments{parts: []string{
					"data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
						"data: [DONE]\n\n",
				}})

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("{\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("[DONE]"))
			})
		})

		Context("edge cases", func() {
			It("returns EOF on empty input", func() {
				r := NewReader(&fragments{})
				ev, err := r.Next()
				Expect(err).To(MatchError(io.EOF))
				Expect(ev).To(BeNil())
			})

			It("returns EOF on input with only blank lines", func() {
				r := NewReader(&fragments{parts: []string{"\n\n\n"}})
				_, err := r.Next()
				Expect(err).To(MatchError(io.EOF))
			})

			It("yields event when stream ends without trailing blank line", func() {
				r := NewReader(&fragments{parts: []string{"data: unterminated"}})

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("unterminated"))

				_, err = r.Next()
				Expect(err).To(MatchError(io.EOF))
			})

			It("propagates source errors and drops the partial block", func() {
				boom := errors.New("truncated")
				r := NewReader(&fragments{parts: []string{"data: partial"}, err: boom})

				_, err := r.Next()
				Expect(err).To(MatchError(boom))
				Expect(r.Buffered()).To(Equal(0))
			})
		})
	})
})
