// main is the entry point for the tschart CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/tschart/cmd"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("tschart", err)
	}
}
