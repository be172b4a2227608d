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

package status

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/aamcrae/geneva/clock"
)

// Serial writes a line for each status to a serial port:
//
//	STATUS <code> <name>
type Serial struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewSerial creates a Serial writing to w.
func NewSerial(w io.Writer) *Serial {
	s := &Serial{w: w}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return s
}

// OpenSerial opens the serial device at the baud rate.
func OpenSerial(device string, baud int) (*Serial, error) {
	if baud <= 0 {
		return nil, fmt.Errorf("%d: invalid baud rate", baud)
	}
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", device, err)
	}
	lg.Infof("%s: status output at %d baud", device, baud)
	return NewSerial(p), nil
}

func (s *Serial) Report(st clock.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "STATUS %d %s\n", int(st), st); err != nil {
		lg.Errorf("serial status: %v", err)
	}
}

// Close closes the port.
func (s *Serial) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
