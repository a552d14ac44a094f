package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"betterlog/logger"
)

var configPath = flag.String("config", "", "path to YAML config file (empty uses defaults)")

func main() {
	flag.Parse()

	cfg := logger.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = logger.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Close()

	divide := lg.Wrap(func(call logger.CallSite) (any, error) {
		a := call.Args[0].(float64)
		b := call.Args[1].(float64)
		if b == 0 {
			return nil, errors.New("division by zero")
		}
		return a / b, nil
	}, logger.WrapOptions{})

	if result, err := divide(logger.CallSite{Name: "divide", Args: []any{10.0, 4.0}}); err == nil {
		fmt.Printf("divide(10, 4) = %v\n", result)
	}
	if _, err := divide(logger.CallSite{Name: "divide", Args: []any{1.0, 0.0}}); err != nil {
		fmt.Printf("divide(1, 0) failed: %v\n", err)
	}

	log.Printf("Records written to %s", filepath.Join(cfg.LogDir, cfg.LogFileName+".log"))
}
