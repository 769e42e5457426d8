package extract_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/textstream/pkg/extract"
)

func decode(raw string) any {
	var node any
	Expect(json.Unmarshal([]byte(raw), &node)).To(Succeed())
	return node
}

var _ = Describe("Delta", func() {
	It("extracts content nested in a messages array", func() {
		Expect(extract.Delta(decode(`{"messages":[{"content":"hello"}]}`))).To(Equal("hello"))
	})

	It("collects every probed field rather than the first match", func() {
		node := decode(`{"content":"second","message":{"text":"first"}}`)
		Expect(extract.Delta(node)).To(Equal("firstsecond"))
	})

	It("follows the fixed probe order message, messages, content, segments", func() {
		node := decode(`{
			"segments":[{"text":"4"}],
			"content":"3",
			"messages":[{"content":"2"}],
			"message":{"content":"1"}
		}`)
		Expect(extract.Delta(node)).To(Equal("1234"))
	})

	It("descends nested objects and arrays depth-first in order", func() {
		node := decode(`{"message":{"content":[
			{"text":"a"},
			{"segments":[{"text":"b"},{"content":{"text":"c"}}]},
			"d"
		]}}`)
		Expect(extract.Delta(node)).To(Equal("abcd"))
	})

	It("visits text before content within one object", func() {
		node := decode(`{"message":{"content":"y","text":"x"}}`)
		Expect(extract.Delta(node)).To(Equal("xy"))
	})

	It("falls back to the whole node when probes yield nothing", func() {
		Expect(extract.Delta(decode(`{"text":"fallback"}`))).To(Equal("fallback"))
		Expect(extract.Delta(decode(`{"content":"","text":"fallback"}`))).To(Equal("fallback"))
	})

	It("accepts non-object nodes", func() {
		Expect(extract.Delta(decode(`"plain"`))).To(Equal("plain"))
		Expect(extract.Delta(decode(`[{"text":"a"},"b"]`))).To(Equal("ab"))
	})

	It("skips nulls, empty strings and non-text scalars", func() {
		node := decode(`{"message":null,"messages":[null,"",1,true,{"content":"ok"}],"content":42}`)
		Expect(extract.Delta(node)).To(Equal("ok"))
	})

	It("ignores fields outside the vocabulary", func() {
		node := decode(`{"role":"assistant","tool_calls":[{"text":"hidden"}]}`)
		Expect(extract.Delta(node)).To(BeEmpty())
	})

	It("returns an empty string for nil", func() {
		Expect(extract.Delta(nil)).To(BeEmpty())
	})
})

var _ = Describe("Text", func() {
	It("does not apply the top-level probe", func() {
		node := decode(`{"content":"c","text":"t"}`)
		Expect(extract.Text(node)).To(Equal("tc"))
		Expect(extract.Delta(node)).To(Equal("c"))
	})
})
