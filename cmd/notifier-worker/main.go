package main

import (
	"os"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/notifierworker"
)

func main() {
	if err := notifierworker.Run(); err != nil {
		os.Exit(1)
	}
}
