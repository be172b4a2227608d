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

// Program to demonstrate how to drive the clock stepper motor.

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/alecthomas/kingpin/v2"
	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/clock"
	"github.com/aamcrae/geneva/io"
)

var (
	configFile = kingpin.Flag("config", "Configuration file").Short('c').Required().String()
	steps      = kingpin.Flag("steps", "Steps to move, negative for counterclockwise").Default("512").Int()
	speed      = kingpin.Flag("speed", "Speed profile").Default("auto").Enum("slow", "auto", "fast")
	repeat     = kingpin.Flag("repeat", "Number of back and forth moves").Default("1").Int()
)

var speeds = map[string]io.Speed{
	"slow": io.Slow,
	"auto": io.Auto,
	"fast": io.Fast,
}

func main() {
	kingpin.Parse()
	logger.ChangePackageLogLevel("io", logger.DebugLevel)
	err := run()
	logger.FinalizeLogger()
	if err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := clock.ReadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("%s: %v", *configFile, err)
	}
	board, err := clock.OpenBoard(cfg)
	if err != nil {
		return fmt.Errorf("GPIO: %v", err)
	}
	defer board.Close()
	stepper, err := io.NewStepper(board.Bank, cfg.Stepper(), io.BusyWait{})
	if err != nil {
		return fmt.Errorf("Stepper: %v", err)
	}
	defer stepper.Off()
	sp := speeds[*speed]
	st := *steps
	now := time.Now()
	for i := 0; i < *repeat; i++ {
		stepper.Step(st, sp)
		stepper.Step(-st, sp)
	}
	elapsed := time.Now().Sub(now)
	moved := 2 * *repeat * st
	if moved < 0 {
		moved = -moved
	}
	log.Printf("Elapsed = %s for %d steps at %s, phase %d, position %d", elapsed, moved, sp, stepper.Phase(), stepper.Position())
	return nil
}
