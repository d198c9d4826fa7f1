package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	hv "github.com/opercjy/RENE-predictive-maintenance-HV"
)

func main() {
	cfg, err := hv.LoadConfig("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := hv.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime exited: %v", err)
	}
}
