package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardubot/go-ardubot/internal/config"
	"github.com/ardubot/go-ardubot/internal/log"
	"github.com/ardubot/go-ardubot/pkg/hal"
	"github.com/ardubot/go-ardubot/pkg/pilot"
	"github.com/ardubot/go-ardubot/pkg/sim"
	"github.com/ardubot/go-ardubot/pkg/web"
)

func main() {
	// Command line flags
	addr := flag.String("addr", config.ListenAddr(), "listen address")
	level := flag.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	obstacle := flag.Int("obstacle", config.SimObstacleCm(-1), "simulated obstacle distance in cm (negative = open space)")
	pivotMs := flag.Int("pivot-ms", 0, "pivot duration override in milliseconds (0 = default)")
	showDisplay := flag.Bool("show-display", false, "render the simulated indicator to stdout")
	flag.Parse()

	log.Init(*level)

	fmt.Println("🤖 ardubot daemon")
	fmt.Printf("   Listen:   %s\n", *addr)
	if *obstacle >= 0 {
		fmt.Printf("   Obstacle: %dcm ahead (simulated)\n", *obstacle)
	} else {
		fmt.Println("   Obstacle: none (simulated open space)")
	}
	fmt.Println()

	var displayOut io.Writer
	if *showDisplay {
		displayOut = os.Stdout
	}
	chassis := sim.NewChassis(log.L(), displayOut, *obstacle)

	server := web.NewServer(*addr)

	opts := []pilot.Option{
		pilot.WithTrace(server),
		pilot.WithScanner(chassis.Scanner),
	}
	if *pivotMs > 0 {
		opts = append(opts, pilot.WithPivotDuration(time.Duration(*pivotMs)*time.Millisecond))
	}
	p := pilot.New(chassis.Motor, chassis.RangeFinder, chassis.Display, opts...)

	server.OnCommand = p.Handle
	server.OnDisconnect = p.Disconnected

	server.StartAsync()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n👋 Shutting down...")
	if err := server.Shutdown(); err != nil {
		log.Error("shutdown", "err", err)
	}
	// Leave the hardware in a safe state
	chassis.Stop()
	chassis.Render(hal.PatternBlank)

	fmt.Println("👋 Goodbye!")
}
