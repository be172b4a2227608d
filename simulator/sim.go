// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Simulator clock program

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/clock"
	"github.com/aamcrae/geneva/io"
	"github.com/aamcrae/geneva/sim"
	"github.com/aamcrae/geneva/status"
)

var (
	configFile = kingpin.Flag("config", "Configuration file, the Generic Clock Board if not set").Short('c').String()
	port       = kingpin.Flag("port", "Web server port number").Default("8080").Int()
	speedup    = kingpin.Flag("speedup", "Simulated minutes per real minute").Default("60").Float64()
	start      = kingpin.Flag("time", "Starting time of day, the current time if not set").String()
	rotor      = kingpin.Flag("rotor", "Starting rotor position in steps").Default("12345").Int64()
	report     = kingpin.Flag("report", "Position report interval").Default("5s").Duration()
	debug      = kingpin.Flag("debug", "Log each clock update").Bool()
)

func main() {
	kingpin.Parse()
	defer logger.FinalizeLogger()
	if *debug {
		logger.ChangePackageLogLevel("clock", logger.DebugLevel)
	}
	cfg := clock.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = clock.ReadConfig(*configFile)
		if err != nil {
			log.Fatalf("%s: %v", *configFile, err)
		}
	}
	cfg.Backend = "sim"
	board, err := clock.OpenBoard(cfg)
	if err != nil {
		log.Fatalf("Board: %v", err)
	}
	defer board.Close()
	board.Motor.SetPosition(*rotor)
	m, _, err := board.Mechanics(cfg, io.NoDelay{}, clock.WithReporter(status.Log{Name: "sim"}))
	if err != nil {
		log.Fatalf("Clock: %v", err)
	}

	now := time.Now().In(cfg.Zone)
	if *start != "" {
		t, err := time.Parse("15:04", *start)
		if err != nil {
			log.Fatalf("%s: %v", *start, err)
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, cfg.Zone)
	}
	src := sim.NewClock(now, *speedup)
	if *port != 0 {
		go func() {
			log.Fatal(clock.NewServer(m).ListenAndServe(*port))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go positions(ctx, m, board, src)
	if err := m.Run(ctx, src, cfg.Retry); err != nil {
		fmt.Printf("Simulator stopped: %v\n", err)
	}
	fmt.Printf("Motor pulses %d, missed %d, invalid %d\n", board.Motor.Pulses, board.Motor.Missed, board.Motor.Invalid)
}

// positions periodically compares the simulated rotor with the time shown.
func positions(ctx context.Context, m *clock.Mechanics, board *clock.Board, src *sim.Clock) {
	t := time.NewTicker(*report)
	defer t.Stop()
	cycle := board.HomeSwitch.Cycle
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		pos, min := m.Position()
		homed, st := m.Homed()
		rp := board.Motor.Position() % cycle
		if rp < 0 {
			rp += cycle
		}
		fmt.Printf("%s: shows %d:%02d, position %d, rotor %d, homed %v (%s)\n",
			src.Now().Format("15:04:05"), min/60, min%60, pos, rp, homed, st)
		if homed && rp != int64(pos) {
			fmt.Printf("Rotor is %d steps from the tracked position\n", rp-int64(pos))
		}
	}
}
