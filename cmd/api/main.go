package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/di"
)

func main() {
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Serve() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	failed := false
	select {
	case s := <-sig:
		a.Logger.Info("shutdown signal received", "signal", s.String())
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error("http server failed", "error", err)
			failed = true
		}
	}

	if err := a.Shutdown(context.Background()); err != nil || failed {
		os.Exit(1)
	}
}
