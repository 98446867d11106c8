package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-vitals-stream/internal/config"
	"github.com/ivanzxc/go-vitals-stream/internal/logger"
	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
	"github.com/ivanzxc/go-vitals-stream/internal/stream"
	"github.com/ivanzxc/go-vitals-stream/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&cfg.Monitor.Host, "host", cfg.Monitor.Host, "sensor listen host")
	flag.IntVar(&cfg.Monitor.Port, "port", cfg.Monitor.Port, "sensor listen port")
	flag.BoolVar(&cfg.Monitor.AutoStart, "listen", cfg.Monitor.AutoStart, "listen for the sensor at startup")
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "http address")
	flag.StringVar(&cfg.NATS.URL, "nats", cfg.NATS.URL, "NATS url (empty disables export)")
	flag.StringVar(&cfg.MQTT.Broker, "mqtt", cfg.MQTT.Broker, "MQTT broker (empty disables export)")
	flag.Parse()

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "vitals-server")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	mon := monitor.New(monitor.Options{
		EventBuffer:  cfg.Monitor.EventBuffer,
		RateInterval: cfg.Monitor.RateInterval,
		Logger:       lg.Named("monitor"),
	})

	hub := web.NewHub()
	publishers := stream.Fanout{hub}

	if cfg.NATS.URL != "" {
		nc, err := stream.Connect(cfg.NATS.URL)
		if err != nil {
			lg.Fatal("Failed to connect to NATS", zap.String("url", cfg.NATS.URL), zap.Error(err))
		}
		publishers = append(publishers, stream.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix))
		lg.Info("Exporting events to NATS", zap.String("prefix", cfg.NATS.SubjectPrefix))
	}
	if cfg.MQTT.Broker != "" {
		mp, err := stream.NewMQTTPublisher(&cfg.MQTT)
		if err != nil {
			lg.Fatal("Failed to connect to MQTT", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		}
		publishers = append(publishers, mp)
		lg.Info("Exporting events to MQTT", zap.String("prefix", cfg.MQTT.TopicPrefix))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go mon.Run(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-mon.Events():
				if ev.Kind == monitor.EventStatus {
					lg.Info("Sensor status", zap.Stringer("state", ev.State), zap.String("addr", ev.Addr))
				}
				if err := publishers.Publish(ev); err != nil {
					lg.Warn("Failed to publish event", zap.Stringer("kind", ev.Kind), zap.Error(err))
				}
			}
		}
	}()

	if cfg.Monitor.AutoStart {
		// A bind failure is reported and the listener can be started later
		// through the control API.
		_ = mon.Start(cfg.Monitor.Host, cfg.Monitor.Port)
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: web.NewServer(mon, hub, cfg.Monitor.Host, cfg.Monitor.Port, lg.Named("http")),
	}

	go func() {
		lg.Info("Server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	ch := make(chan os.Signal, 1)
	osSignal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-ch:
		lg.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	_ = server.Shutdown(shutdownCtx)
	mon.Close()
	cancel()
	if err := publishers.Close(); err != nil {
		lg.Warn("Error closing publishers", zap.Error(err))
	}
	lg.Info("Server stopped")
}
