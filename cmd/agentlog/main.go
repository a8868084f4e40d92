package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentlog/ontology-go/internal/cli"
	"github.com/agentlog/ontology-go/normalize"
	"github.com/agentlog/ontology-go/normalize/agenttraces"
	"github.com/agentlog/ontology-go/normalize/openaitraces"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := normalize.NewRegistry()
	if err := registry.Register(agenttraces.Format, agenttraces.Normalize); err != nil {
		log.Fatalf("failed to register connector: %v", err)
	}
	if err := registry.Register(openaitraces.Format, openaitraces.Normalize); err != nil {
		log.Fatalf("failed to register connector: %v", err)
	}

	cli.Run(ctx, registry, os.Args[1:])
}
