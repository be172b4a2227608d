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

// Clock program

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/clock"
	"github.com/aamcrae/geneva/io"
	"github.com/aamcrae/geneva/status"
)

var (
	configFile = kingpin.Flag("config", "Configuration file").Short('c').Required().String()
	debug      = kingpin.Flag("debug", "Log each clock update").Bool()
	backend    = kingpin.Flag("backend", "Override the configured GPIO backend").String()
)

func main() {
	kingpin.Parse()
	if *debug {
		logger.ChangePackageLogLevel("clock", logger.DebugLevel)
		logger.ChangePackageLogLevel("io", logger.DebugLevel)
	}
	err := run()
	logger.FinalizeLogger()
	if err != nil {
		log.Fatal(err)
	}
}

// run returns once the clock is stopped, having released the hardware.
func run() error {
	cfg, err := clock.ReadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("%s: %v", *configFile, err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	board, err := clock.OpenBoard(cfg)
	if err != nil {
		return fmt.Errorf("GPIO: %v", err)
	}
	defer board.Close()

	reporters := status.Multi{status.Log{Name: "clock"}}
	if cfg.Serial != "" {
		s, err := status.OpenSerial(cfg.Serial, cfg.Baud)
		if err != nil {
			return fmt.Errorf("Serial: %v", err)
		}
		defer s.Close()
		reporters = append(reporters, s)
	}
	if board.Led != nil {
		led := status.NewPinLED(board.Led)
		defer led.Close()
		reporters = append(reporters, led)
	}
	var delay io.Delayer = io.BusyWait{}
	if board.Motor != nil {
		delay = io.NoDelay{}
	}
	m, stepper, err := board.Mechanics(cfg, delay, clock.WithReporter(reporters))
	if err != nil {
		return fmt.Errorf("Clock: %v", err)
	}
	defer stepper.Off()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if cfg.Port != 0 {
		go func() {
			cancel(fmt.Errorf("Server: %w", clock.NewServer(m).ListenAndServe(cfg.Port)))
		}()
	}
	err = m.Run(ctx, clock.ZoneTime{Zone: cfg.Zone}, cfg.Retry)
	if cause := context.Cause(ctx); cause != nil && cause != context.Canceled {
		return cause
	}
	log.Printf("Clock stopped: %v", err)
	return nil
}
