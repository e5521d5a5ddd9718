package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	raven "github.com/getsentry/raven-go"

	"github.com/archivedrop/archivedrop/config"
	"github.com/archivedrop/archivedrop/server"
)

func main() {
	var configFile = flag.String("config", "config.toml", "location of the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalln(err)
	}
	if cfg.SentryDSN != "" {
		raven.SetDSN(cfg.SentryDSN)
	}

	ws := &server.WebServer{
		PortNumber: cfg.Port,
		StorageDir: cfg.StorageDir,
	}
	if cfg.TokensFile != "" {
		ws.Validator, err = server.NewListDecoderFile(cfg.TokensFile)
		if err != nil {
			log.Fatalln(err)
		}
	} else {
		log.Println("no tokens_file configured, running without authentication")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("shutting down")
		ws.Stop()
	}()

	if err := ws.Run(); err != nil {
		log.Fatalln(err)
	}
}
