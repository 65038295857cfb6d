// Package main implements the chess server application with a RESTful API
// and a websocket channel for live game updates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessbot/internal/http"
	"chessbot/internal/processor"
	"chessbot/internal/service"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	var (
		apiHost = flag.String("api-host", "localhost", "API server host")
		apiPort = flag.Int("api-port", 8080, "API server port")
		dev     = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		workers = flag.Int("workers", 2, "Number of engine workers for computer moves")
	)
	flag.Parse()

	svc := service.New()
	proc := processor.New(svc, *workers)
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		log.Printf("Engine workers: %d", *workers)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Websocket: ws://%s/ws/games/<gameId>", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Release long-poll and websocket waiters so connections can drain
	svc.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	log.Println("Server exited")
}
