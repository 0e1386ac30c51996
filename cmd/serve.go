package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/royalcat/rquadtree/entries"
	"github.com/royalcat/rquadtree/internal/telemetry"
	"github.com/royalcat/rquadtree/layer"
	"github.com/royalcat/rquadtree/server"
	"github.com/urfave/cli/v3"
)

func serve(ctx *cli.Context) error {
	sctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var level slog.Level
	if err := level.UnmarshalText([]byte(ctx.String("log.level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	client, err := telemetry.Setup(sctx, telemetry.Config{
		AppName:  "rquadtree",
		Endpoint: ctx.String("otel.endpoint"),
		Insecure: ctx.Bool("otel.insecure"),
		Level:    level,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Shutdown(shutdownCtx)
	}()

	registry := layer.NewRegistry()

	if world := ctx.String("world"); world != "" {
		if err := createDefaultLayer(ctx, registry, world); err != nil {
			return err
		}
	} else if ctx.String("input") != "" {
		return fmt.Errorf("--input requires --world")
	}

	return server.Run(sctx, ctx.String("listen"), registry)
}

func createDefaultLayer(ctx *cli.Context, registry *layer.Registry, world string) error {
	boundary, err := parseWorld(world)
	if err != nil {
		return err
	}

	l, err := registry.Create(ctx.String("layer"), boundary, layer.Config{
		Capacity: ctx.Int("capacity"),
		MaxDepth: ctx.Int("max-depth"),
	})
	if err != nil {
		return fmt.Errorf("failed to create default layer: %w", err)
	}

	input := ctx.String("input")
	if input == "" {
		return nil
	}

	slog.Info("Loading entries", "file", input, "layer", l.Name())
	rects, err := entries.Load(input)
	if err != nil {
		return err
	}

	rejected := 0
	for _, ok := range l.Insert(rects...) {
		if !ok {
			rejected++
		}
	}
	slog.Info("Entries loaded", "layer", l.Name(), "inserted", len(rects)-rejected, "rejected", rejected)

	return nil
}
