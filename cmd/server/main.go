// Package main implements the entry point for the annotation platform
// API server, which manages users, registered music, annotation
// questions and the tagging task workflow.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
