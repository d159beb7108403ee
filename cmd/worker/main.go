// Command worker runs the load confirmation extraction pipeline.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/loadextract/internal/config"
)

func main() {
	once := flag.Bool("once", false, "Claim and process a single batch, then exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("load .env failed: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	worker, err := NewWorker(cfg)
	if err != nil {
		log.Fatal("worker init failed: ", err)
	}

	if *once {
		n, err := worker.RunOnce(cfg.ShutdownTimeoutDuration())
		if err != nil {
			log.Fatal("run once failed: ", err)
		}
		log.Printf("processed %d documents", n)
		return
	}

	if err := worker.Start(); err != nil {
		log.Fatal("worker start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := worker.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
	log.Println("worker stopped")
}
