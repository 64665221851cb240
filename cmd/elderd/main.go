// Command elderd runs the elder side of the core: blob-record
// placement, fan-out, and liveness tracking (C3/C4), driven by a
// static section membership in place of a real routing collaborator
// (spec.md §1).
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xornet-io/vault/cmn/config"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/liveness"
	"github.com/xornet-io/vault/metadata"
	"github.com/xornet-io/vault/metrics"
	"github.com/xornet-io/vault/node"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file; defaults baked in if unset")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			nlog.Errorln("elderd: config load failed:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.GCO.Put(cfg)

	instance, err := node.NewInstanceID()
	if err != nil {
		nlog.Errorln("elderd: instance id generation failed:", err)
		os.Exit(1)
	}
	nlog.Infoln("elderd: starting, instance", instance)

	reader, err := node.NewStaticReaderFromConfig(cfg.Section)
	if err != nil {
		nlog.Errorln("elderd: section config invalid:", err)
		os.Exit(1)
	}

	tracker := liveness.NewWithTunables(cfg.Liveness.NeighbourCount, cfg.Liveness.MinPendingOps, cfg.Liveness.PendingOpToleranceRatio)
	full := metadata.NewFullAdults()
	records := metadata.NewBlobRecords(reader, full, tracker, cfg.Placement.ChunkCopyCount)
	mapper := node.NewEventMapper(nil, records) // adult-side handler not wired on an elder process

	dispatcher := node.NewDispatcher(node.LogSender{}) // no transport collaborator in this standalone binary (spec.md §1)
	loop := node.NewLoop(mapper, dispatcher, 64)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	reg := metrics.NewRegistry()
	reg.MustRegister(prometheus.DefaultRegisterer)
	for _, a := range reader.Members() {
		reg.ObservePendingOps(a, tracker.PendingOps(a))
	}

	admin := node.NewAdminServer(cfg.AdminListen, instance)
	if err := admin.ListenAndServe(); err != nil {
		nlog.Errorln("elderd: admin server stopped:", err)
		os.Exit(1)
	}
}
