package main

import (
	"os"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/amityservice"
)

func main() {
	if err := amityservice.Run(); err != nil {
		os.Exit(1)
	}
}
