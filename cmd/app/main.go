package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("faq-kb: wire dependencies: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		stop()
		log.Fatalf("faq-kb: serve: %v", err)
	}
}
