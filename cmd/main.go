package main

import (
	"os"

	"github.com/soundprediction/graphling/cmd/graphling"
)

func main() {
	if err := graphling.Execute(); err != nil {
		os.Exit(1)
	}
}
