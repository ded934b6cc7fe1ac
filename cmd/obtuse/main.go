package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	obtusecmd "github.com/louisbranch/obtuse.units/internal/cmd/obtuse"
	"github.com/louisbranch/obtuse.units/internal/platform/config"
)

// main obfuscates one quantity, or lists and replays recorded calls.
func main() {
	log.SetPrefix("[OBTUSE] ")
	cfg, err := obtusecmd.ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := obtusecmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.ExitCodef(obtusecmd.ExitCode(err), "%s", obtusecmd.Message(err, cfg.Locale))
	}
}
