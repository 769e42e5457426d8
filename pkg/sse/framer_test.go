package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Framer", func() {
	var f *Framer

	BeforeEach(func() {
		f = NewFramer()
	})

	It("splits blocks on blank lines", func() {
		f.Write("data: first\n\ndata: second\n\n")

		block, ok := f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: first"))

		block, ok = f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: second"))

		_, ok = f.Next()
		Expect(ok).To(BeFalse())
		Expect(f.Buffered()).To(Equal(0))
	})

	It("holds a partial block until its delimiter arrives", func() {
		f.Write("data: hel")
		_, ok := f.Next()
		Expect(ok).To(BeFalse())

		f.Write("lo\n")
		_, ok = f.Next()
		Expect(ok).To(BeFalse())

		f.Write("\ndata: next")
		block, ok := f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: hello"))
		Expect(f.Buffered()).To(Equal(len("data: next")))
	})

	It("skips leading and repeated blank lines", func() {
		f.Write("\n\n\n\ndata: hello\n\n\n\n")

		block, ok := f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: hello"))

		_, ok = f.Next()
		Expect(ok).To(BeFalse())
	})

	It("normalizes CRLF delimiters, including pairs split across writes", func() {
		f.Write("data: a\r\n\r")
		f.Write("\ndata: b\r\n\r\n")

		block, ok := f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: a"))

		block, ok = f.Next()
		Expect(ok).To(BeTrue())
		Expect(block).To(Equal("data: b"))
	})

	Describe("Flush", func() {
		It("returns an unterminated trailing block", func() {
			f.Write("data: unterminated\n")
			block, ok := f.Flush()
			Expect(ok).To(BeTrue())
			Expect(block).To(Equal("data: unterminated"))
			Expect(f.Buffered()).To(Equal(0))
		})

		It("reports nothing for trailing whitespace", func() {
			f.Write("data: x\n\n \n")
			_, _ = f.Next()
			_, ok := f.Flush()
			Expect(ok).To(BeFalse())
		})
	})
})
