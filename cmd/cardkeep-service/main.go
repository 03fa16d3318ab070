package main

import (
	"os"

	"github.com/cardkeep/cardkeep/cardservice"
)

func main() {
	if err := cardservice.Run(); err != nil {
		os.Exit(1)
	}
}
