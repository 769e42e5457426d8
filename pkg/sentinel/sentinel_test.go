package sentinel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/textstream/pkg/sentinel"
)

func ptr(s string) *string { return &s }

var _ = Describe("Inspect", func() {
	It("strips the marker and surrounding trailing whitespace", func() {
		check := sentinel.Inspect(ptr("hello <END>   "))
		Expect(check.Satisfied).To(BeTrue())
		Expect(check.SanitizedContent).To(HaveValue(Equal("hello")))
	})

	It("returns unmarked content unchanged", func() {
		check := sentinel.Inspect(ptr("hello world"))
		Expect(check.Satisfied).To(BeFalse())
		Expect(check.SanitizedContent).To(HaveValue(Equal("hello world")))
	})

	It("does not trim unmarked content", func() {
		check := sentinel.Inspect(ptr("  hello world \n"))
		Expect(check.Satisfied).To(BeFalse())
		Expect(check.SanitizedContent).To(HaveValue(Equal("  hello world \n")))
	})

	It("handles nil input", func() {
		check := sentinel.Inspect(nil)
		Expect(check.Satisfied).To(BeFalse())
		Expect(check.SanitizedContent).To(BeNil())
		Expect(check.Text()).To(BeEmpty())
	})

	It("accepts a marker with no preceding text", func() {
		check := sentinel.InspectString("<END>\n")
		Expect(check.Satisfied).To(BeTrue())
		Expect(check.Text()).To(BeEmpty())
	})

	It("strips multi-line trailing whitespace before the marker", func() {
		check := sentinel.InspectString("line one\nline two\n\n<END>\n\n")
		Expect(check.Satisfied).To(BeTrue())
		Expect(check.Text()).To(Equal("line one\nline two"))
	})

	It("only matches a trailing marker", func() {
		check := sentinel.InspectString("<END> and then more")
		Expect(check.Satisfied).To(BeFalse())
		Expect(check.Text()).To(Equal("<END> and then more"))
	})

	It("is case-sensitive", func() {
		check := sentinel.InspectString("done <end>")
		Expect(check.Satisfied).To(BeFalse())
	})

	It("strips only one marker", func() {
		check := sentinel.InspectString("a <END> <END>")
		Expect(check.Satisfied).To(BeTrue())
		Expect(check.Text()).To(Equal("a <END>"))
	})

	It("does not mutate the caller's string", func() {
		input := "kept <END>"
		check := sentinel.Inspect(&input)
		Expect(input).To(Equal("kept <END>"))
		Expect(check.SanitizedContent).NotTo(BeIdenticalTo(&input))
	})
})

var _ = Describe("Sentinel", func() {
	It("supports a custom marker", func() {
		s := sentinel.New("[[DONE]]")
		Expect(s.Marker()).To(Equal("[[DONE]]"))

		check := s.InspectString("answer [[DONE]] ")
		Expect(check.Satisfied).To(BeTrue())
		Expect(check.Text()).To(Equal("answer"))

		Expect(s.InspectString("answer <END>").Satisfied).To(BeFalse())
	})

	It("falls back to the default marker", func() {
		Expect(sentinel.New("").Marker()).To(Equal(sentinel.Marker))
	})
})
