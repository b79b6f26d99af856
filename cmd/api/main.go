package main

import (
	"fmt"
	"os"

	"github.com/cinex/cinema-ticketing/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cinema-ticketing-api: %v\n", err)
		os.Exit(1)
	}
}
