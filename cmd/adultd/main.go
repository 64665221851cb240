// Command adultd runs the adult side of the core: a chunk store and
// handler (C1/C2) behind the admin surface, driven by NodeCmd/NodeQuery
// events a real transport collaborator would deliver.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xornet-io/vault/chunk"
	"github.com/xornet-io/vault/cmn/config"
	"github.com/xornet-io/vault/cmn/nlog"
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
			nlog.Errorln("adultd: config load failed:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.GCO.Put(cfg)

	instance, err := node.NewInstanceID()
	if err != nil {
		nlog.Errorln("adultd: instance id generation failed:", err)
		os.Exit(1)
	}
	nlog.Infoln("adultd: starting, instance", instance, "root", cfg.RootDir)

	store, err := chunk.NewStore(cfg.RootDir, cfg.MaxCapacity)
	if err != nil {
		nlog.Errorln("adultd: chunk store init failed:", err)
		os.Exit(1)
	}
	defer store.Close()

	handler := chunk.NewHandler(store)
	mapper := node.NewEventMapper(handler, nil) // elder-side records not wired on an adult process

	dispatcher := node.NewDispatcher(node.LogSender{}) // no transport collaborator in this standalone binary (spec.md §1)
	loop := node.NewLoop(mapper, dispatcher, 64)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	reg := metrics.NewRegistry()
	reg.MustRegister(prometheus.DefaultRegisterer)
	reg.ObserveUsedSpaceRatio(store.UsedSpaceRatio())

	admin := node.NewAdminServer(cfg.AdminListen, instance)
	if err := admin.ListenAndServe(); err != nil {
		nlog.Errorln("adultd: admin server stopped:", err)
		os.Exit(1)
	}
}
