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

// Program to watch the home sensor and pushbutton inputs.

package main

import (
	"log"
	"time"

	"github.com/alecthomas/kingpin/v2"
	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/clock"
)

var (
	configFile = kingpin.Flag("config", "Configuration file").Short('c').Required().String()
	poll       = kingpin.Flag("poll", "Input poll interval").Default("20ms").Duration()
)

func main() {
	kingpin.Parse()
	defer logger.FinalizeLogger()
	cfg, err := clock.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	board, err := clock.OpenBoard(cfg)
	if err != nil {
		log.Fatalf("GPIO: %v", err)
	}
	defer board.Close()
	home := clock.NewHomeSensor("home", board.Home, cfg.NormallyOpen)
	button := &clock.Button{Input: board.Button}
	lastHome, lastButton := home.IsHome(), button.IsPressed()
	log.Printf("home = %v, button = %v", lastHome, lastButton)
	for range time.Tick(*poll) {
		h, b := home.IsHome(), button.IsPressed()
		if h != lastHome {
			log.Printf("home = %v", h)
			lastHome = h
		}
		if b != lastButton {
			log.Printf("button = %v", b)
			lastButton = b
		}
	}
}
