package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	osSignal "os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-vitals-stream/internal/logger"
	"github.com/ivanzxc/go-vitals-stream/internal/signal"
)

func main() {

	var (
		addr     = flag.String("addr", "127.0.0.1:8080", "monitor sensor address")
		fs       = flag.Int("fs", 25, "sampling rate Hz")
		rate     = flag.Float64("rate", 15, "breathing rate per minute")
		noise    = flag.Float64("noise", 0.02, "noise amplitude")
		auxEvery = flag.Duration("aux", 2*time.Second, "auxiliary record interval")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	lg, err := logger.NewLogger(*logLevel, "console", "vitals-producer")
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		lg.Fatal("Failed to connect to monitor", zap.String("addr", *addr), zap.Error(err))
	}
	defer conn.Close()

	sim := signal.NewBreathSim(float64(*fs), *rate, *noise)
	vitals := signal.NewVitals()

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	osSignal.Notify(ch, os.Interrupt)

	go func() {
		<-ch
		cancel()
	}()

	period := time.Second / time.Duration(*fs)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	aux := time.NewTicker(*auxEvery)
	defer aux.Stop()

	w := bufio.NewWriter(conn)
	lg.Info("producer streaming", zap.String("addr", *addr), zap.Int("fs", *fs), zap.Float64("rate", *rate))

	for {
		select {
		case <-ctx.Done():
			lg.Info("producer: stopping")
			return

		case <-ticker.C:
			fmt.Fprintf(w, "V0=%.4f\n", sim.Next())

		case <-aux.C:
			fmt.Fprintln(w, vitals.Next())
		}

		if err := w.Flush(); err != nil {
			lg.Error("Monitor connection lost", zap.Error(err))
			return
		}
	}
}
