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

	callback := func(batch []*hv.Snapshot) error {
		for _, snap := range batch {
			fmt.Printf("%s seq=%d readings=%d\n",
				snap.Timestamp.Format(time.RFC3339),
				snap.Seq,
				len(snap.Readings),
			)
		}
		return nil
	}

	rt, err := hv.NewRuntime(cfg, hv.WithSink(hv.NewCallbackSink("stdout", callback)))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
