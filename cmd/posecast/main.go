package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/junsooki/posecast/internal/capture"
	"github.com/junsooki/posecast/internal/config"
	"github.com/junsooki/posecast/internal/inference"
	"github.com/junsooki/posecast/internal/output"
	"github.com/junsooki/posecast/internal/overlay"
	"github.com/junsooki/posecast/internal/pipeline"
	"github.com/junsooki/posecast/internal/status"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		if config.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log.Printf("posecast starting")
	log.Printf("  Network:    %s", cfg.Network)
	log.Printf("  Overlay:    %s", cfg.Overlay)
	log.Printf("  Threshold:  %.2f", cfg.Threshold)
	log.Printf("  FPS:        %d", cfg.FPS)
	log.Printf("  Input:      %s", orDefault(cfg.Input, "screen://0"))
	log.Printf("  Output:     %s", orDefault(cfg.Output, "display://"))

	if err := run(cfg); err != nil {
		log.Fatalf("posecast: %v", err)
	}
}

func run(cfg *config.Config) error {
	if err := inference.InitEnvironment(cfg.ORTLib); err != nil {
		return err
	}
	defer func() {
		if err := inference.DestroyEnvironment(); err != nil {
			log.Printf("destroy onnxruntime: %v", err)
		}
	}()

	modelPath, err := inference.ResolveModel(cfg.Network, cfg.ModelDir)
	if err != nil {
		return err
	}
	engine, err := inference.NewPoseNet(inference.Options{
		Network:   cfg.Network,
		ModelPath: modelPath,
		Threshold: float32(cfg.Threshold),
		Profile:   cfg.Profile,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	src, err := capture.Open(cfg.Input, capture.Options{FPS: cfg.FPS, Loop: cfg.Loop})
	if err != nil {
		return err
	}
	defer src.Close()

	sink, err := output.Open(cfg.Output, output.Options{
		Quality:      cfg.Quality,
		FPS:          cfg.FPS,
		Title:        cfg.Network,
		SignalingURL: cfg.SignalingURL,
		PublisherID:  cfg.PublisherID,
	})
	if err != nil {
		return err
	}
	defer sink.Close()
	if _, ok := sink.(*output.WebRTCSink); ok {
		log.Printf("Publishing as %s. Share this ID with viewers.", cfg.PublisherID)
	}

	loop := pipeline.New(pipeline.Config{
		Network: cfg.Network,
		Overlay: cfg.Overlay,
		FPS:     cfg.FPS,
	}, src, sink, engine, overlay.NewFont(overlay.DefaultScale), pipeline.WithOutput(os.Stdout))

	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, loop)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if ds, ok := sink.(*output.DisplaySink); ok {
		errCh := make(chan error, 1)
		go func() {
			errCh <- loop.Run(ctx)
			ds.Close()
		}()
		if err := ds.Window().Run(); err != nil {
			stop()
			<-errCh
			return err
		}
		stop()
		err = <-errCh
	} else {
		err = loop.Run(ctx)
	}

	stats := loop.Stats()
	log.Printf("Processed %d frames (%d poses, %d angle measurements, %d capture misses)",
		stats.Frames, stats.Poses, stats.Measurements, stats.CaptureMisses)
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
