package textstreamcmder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	textstreamcmder "github.com/papercomputeco/textstream/cmd/textstream"
	decodecmder "github.com/papercomputeco/textstream/cmd/textstream/decode"
	"github.com/papercomputeco/textstream/pkg/utf8stream"
)

const agentCapture = "data: {\"choices\":[{\"delta\":{\"content\":\"Bonjour, \"}}]}\n\n" +
	": keep-alive\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"ça va? <END>\"}}]}\n\n" +
	"data: [DONE]\n\n"

var _ = Describe("textstream", func() {
	var (
		configDir string
		stdout    *bytes.Buffer
		stderr    *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "textstream-cmd-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(configDir) })

		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	run := func(stdin string, args ...string) error {
		cmd := textstreamcmder.NewTextstreamCmd()
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
		return cmd.Execute()
	}

	It("registers every subcommand", func() {
		cmd := textstreamcmder.NewTextstreamCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("decode", "relay", "config", "version"))
	})

	It("prints the version", func() {
		Expect(run("", "version")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("Version: dev"))
	})

	Describe("decode", func() {
		It("prints fragments from stdin and reports the marker", func() {
			Expect(run(agentCapture, "decode", "--chunk-size", "3")).To(Succeed())
			Expect(stdout.String()).To(Equal("Bonjour, ça va? <END>\n"))
			Expect(stderr.String()).To(ContainSubstring("marker found"))
			Expect(stderr.String()).To(ContainSubstring("2 fragments"))
		})

		It("reads a capture file with the provider from config", func() {
			Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[stream]\nprovider = \"anthropic\"\n"), 0o600)).To(Succeed())

			capture := filepath.Join(configDir, "capture.sse")
			Expect(os.WriteFile(capture, []byte(
				"event: content_block_delta\r\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"from file\"}}\r\n\r\n",
			), 0o600)).To(Succeed())

			Expect(run("", "decode", capture, "--quiet")).To(Succeed())
			Expect(stdout.String()).To(Equal("from file\n"))
			Expect(stderr.String()).To(BeEmpty())
		})

		It("renders the finished text as markdown", func() {
			capture := "data: {\"choices\":[{\"delta\":{\"content\":\"# Heading\\n\\nbody <END>\"}}]}\n\n"
			Expect(run(capture, "decode", "--render", "--quiet")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Heading"))
			Expect(stdout.String()).To(ContainSubstring("body"))
			Expect(stdout.String()).NotTo(ContainSubstring("<END>"))
		})

		It("honours a custom marker", func() {
			capture := "data: {\"choices\":[{\"delta\":{\"content\":\"done [[fin]]\"}}]}\n\n"
			Expect(run(capture, "decode", "--marker", "[[fin]]", "--require-marker")).To(Succeed())
			Expect(stderr.String()).To(ContainSubstring("marker found"))
		})

		It("fails with --require-marker when the marker is missing", func() {
			capture := "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n"
			err := run(capture, "decode", "--require-marker")
			Expect(err).To(MatchError(decodecmder.ErrMarkerMissing))
			Expect(stdout.String()).To(Equal("partial\n"))
		})

		It("surfaces truncated input", func() {
			err := run("data: {\"choices\":[{\"delta\":{\"content\":\"caf\xc3", "decode")
			Expect(err).To(MatchError(utf8stream.ErrTruncated))
		})

		It("prints event data unchanged for providers without a transformer", func() {
			Expect(run("data: hello raw\n\n", "decode", "--provider", "bogus", "--quiet")).To(Succeed())
			Expect(stdout.String()).To(Equal("hello raw\n"))
			Expect(stderr.String()).To(ContainSubstring("no transformer for provider"))
		})

		It("reports missing files", func() {
			Expect(run("", "decode", filepath.Join(configDir, "missing.sse"))).To(MatchError(ContainSubstring("opening stream capture")))
		})
	})
})
