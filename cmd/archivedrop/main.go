package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	raven "github.com/getsentry/raven-go"

	"github.com/archivedrop/archivedrop/bot"
	"github.com/archivedrop/archivedrop/config"
)

func main() {
	var configFile = flag.String("config", "config.toml", "location of the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalln(err)
	}
	if cfg.BotToken == "" {
		log.Fatalln("bot_token is required")
	}
	if cfg.SentryDSN != "" {
		raven.SetDSN(cfg.SentryDSN)
	}
	log.Printf("starting archivedrop bot, config %v", cfg.RedactedSummary())

	// the engine requires the root to exist; create it here, once
	if err := os.MkdirAll(cfg.StorageDir, 0775); err != nil {
		log.Fatalln(err)
	}

	h, err := bot.New(cfg)
	if err != nil {
		log.Fatalln(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("shutting down")
		h.Stop()
	}()

	h.Run()
}
