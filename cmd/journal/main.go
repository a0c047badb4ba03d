// Command journal computes trading journal statistics.
package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"trade-journal/internal/cli"
	"trade-journal/internal/logging"
)

func main() {
	// .env is optional; TJ_* overrides may come from the environment instead.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	if err := cli.NewRootCmd(logger).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
