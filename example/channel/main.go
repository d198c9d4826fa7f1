package main

import (
	"context"
	"fmt"
	"log"
	"time"

	hv "github.com/opercjy/RENE-predictive-maintenance-HV"
)

func main() {
	cfg, err := hv.LoadConfig("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sink, batches, closeBatches := hv.NewChannelSink("fanout", 32)
	defer closeBatches()

	go fanoutWorker("archive", batches)

	rt, err := hv.NewRuntime(cfg, hv.WithSink(sink))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func fanoutWorker(name string, batches <-chan []*hv.Snapshot) {
	for batch := range batches {
		rows := 0
		for _, snap := range batch {
			rows += len(snap.Channels())
		}
		fmt.Printf("[%s] forwarding %d snapshots (%d rows) at %s\n",
			name, len(batch), rows, time.Now().Format(time.RFC3339))
	}
}
