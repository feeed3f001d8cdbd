package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	validatecmd "github.com/louisbranch/tangram.space/internal/cmd/validate"
)

func main() {
	cfg, err := validatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[VALIDATE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := validatecmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("failed to validate: %v", err)
	}
}
