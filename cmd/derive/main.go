// Command derive generates builders and debug functions for the Go structs
// marked with //derive: comments.
//
// Typical use is a go:generate directive in the package declaring the types:
//
//	//go:generate go run github.com/syssam/derive/cmd/derive generate .
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := RootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
