package main

import (
	"flag"
	"log"
	"os"

	"AstroSignal/internal/di"
	"AstroSignal/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s zodiac=%s", cfg.Environment, cfg.Ephemeris.Backend, cfg.Ephemeris.Zodiac)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v requests=%s results=%s", cfg.Kafka.Brokers, cfg.Kafka.RequestTopic, cfg.Kafka.ResultTopic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
