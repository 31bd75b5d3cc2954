package main

import (
	"flag"
	"log"

	"YieldPull/internal/di"
	"YieldPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	log.Printf("starting env=%s backend=%s db=%s brokers=%v",
		cfg.Environment, cfg.Backend.Type, cfg.ClickHouse.Database, cfg.Kafka.Brokers)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return err
	}
	return app.Run()
}
