package main

import (
	"os"

	textstreamcmder "github.com/papercomputeco/textstream/cmd/textstream"
)

func main() {
	cmd := textstreamcmder.NewTextstreamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
