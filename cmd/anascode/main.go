// Command anascode is the content, cache and publishing CLI for anascode.com.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anasaboreeda/anascode/internal/cli"
	"github.com/anasaboreeda/anascode/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return extractExitCode(err)
}

// extractExitCode returns the exit code carried by a *cli.ExitError, 1 for
// any other error, and 0 for nil.
func extractExitCode(err error) int {
	return cli.ExitCode(err)
}
