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

// Calibration utility

package main

import (
	"bufio"
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
	policy     = kingpin.Flag("policy", "Override the homing failure policy (retry or abort)").Enum("retry", "abort")
	dwell      = kingpin.Flag("dwell", "Override the pause at home").Duration()
)

func main() {
	kingpin.Parse()
	err := run()
	logger.FinalizeLogger()
	if err != nil {
		log.Fatal(err)
	}
}

// run calibrates until stopped, then releases the hardware.
func run() error {
	cfg, err := clock.ReadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("%s: %v", *configFile, err)
	}
	if *policy != "" {
		cfg.Policy, _ = clock.ParsePolicy(*policy)
	}
	if *dwell != 0 {
		cfg.Dwell = *dwell
	}
	board, err := clock.OpenBoard(cfg)
	if err != nil {
		return fmt.Errorf("GPIO: %v", err)
	}
	defer board.Close()
	m, stepper, err := board.Mechanics(cfg, io.BusyWait{}, clock.WithReporter(status.Log{Name: "calibrate"}))
	if err != nil {
		return fmt.Errorf("Clock: %v", err)
	}
	defer stepper.Off()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		cancel()
	}()
	fmt.Println("Adjust the home sensor so the indicator stops at 12:00.")
	fmt.Println("Press the button or Enter to finish.")
	if err := m.Calibrate(ctx); err != nil {
		return fmt.Errorf("Calibration: %v", err)
	}
	return nil
}
