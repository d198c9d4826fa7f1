package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	hv "github.com/opercjy/RENE-predictive-maintenance-HV"
)

// Minimal display loop: consume latest snapshots the way a GUI would,
// rendering the voltage margin per channel.
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

	if err := rt.Start(); err != nil {
		log.Fatalf("start runtime: %v", err)
	}

	sub := rt.Subscribe()
	defer sub.Cancel()

	go func() {
		for snap := range sub.Updates() {
			for _, ch := range snap.Channels() {
				vmon := ch.Params[hv.ParamVMon]
				v0set := ch.Params[hv.ParamV0Set]
				fmt.Printf("slot %d ch %2d: %7.1f V (set %7.1f V)\n",
					ch.Slot, ch.Channel, vmon, v0set)
			}
			if sub.Degraded() {
				fmt.Println("WARNING: acquisition degraded")
			}
		}
	}()

	<-ctx.Done()
	_ = rt.Shutdown(context.Background())
}
