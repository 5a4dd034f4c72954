package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rangelab/warpoint/internal/config"
	"github.com/rangelab/warpoint/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (defaults to $CONFIG_PATH)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		log.Fatal("no config file: pass -config or set CONFIG_PATH")
	}

	var c server.Config
	if err := config.Load(path, &c); err != nil {
		log.Fatalf("Load config %s failed: %v", path, err)
	}

	s, err := server.Init(c)
	if err != nil {
		log.Fatalf("Init server failed: %v", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, os.Interrupt)

	go s.Start()

	<-shutdown
	s.Shutdown()
}
