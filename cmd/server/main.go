package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/yourusername/eviction-map/internal/evictmap"
	"github.com/yourusername/eviction-map/internal/handlers"
)

func initServer(m *evictmap.EvictionMap[string, string], port int) *http.Server {
	r := mux.NewRouter()
	r.HandleFunc("/put", handlers.MakePutHandler(m)).Methods("POST")
	r.HandleFunc("/get/{key}", handlers.MakeGetHandler(m)).Methods("GET")
	r.HandleFunc("/stats", handlers.MakeStatsHandler(m)).Methods("GET")

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handlers.LoggingMiddleware(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func main() {
	port := flag.Int("port", 8080, "listen port")
	ttl := flag.Int("ttl", 60, "entry lifetime in seconds")
	initialDelay := flag.Int("initial-delay", 1, "seconds before the first sweep")
	period := flag.Int("period", 1, "seconds between sweeps")
	flag.Parse()

	m, err := evictmap.New[string, string](*ttl, *initialDelay, *period)
	if err != nil {
		log.Fatalf("evictmap: %v", err)
	}

	srv := initServer(m, *port)

	go func() {
		log.Printf("server started at :%d (ttl=%ds sweep every %ds)\n", *port, *ttl, *period)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stopSig := make(chan os.Signal, 1)
	signal.Notify(stopSig, syscall.SIGINT, syscall.SIGTERM)
	<-stopSig
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := m.Close(); err != nil {
		log.Printf("close error: %v", err)
	}
	log.Println("server stopped")
}
