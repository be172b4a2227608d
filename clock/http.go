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

// HTTP server for clock status and images

package clock

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/fogleman/gg"
)

const faceSize = 400

// Server serves the tracked state of a clock.
type Server struct {
	m   *Mechanics
	mux *http.ServeMux
}

// ClockStatus is the JSON status of the clock.
type ClockStatus struct {
	Name     string `json:"name"`
	Homed    bool   `json:"homed"`
	Status   string `json:"status"`
	Position int    `json:"position"`
	Minutes  int    `json:"minutes"`
	Time     string `json:"time"`
	Cycle    int    `json:"cycle"`
}

// NewServer creates a Server with handlers for /clock.png and /status.
func NewServer(m *Mechanics) *Server {
	s := &Server{m: m, mux: http.NewServeMux()}
	s.mux.HandleFunc("/clock.png", s.image)
	s.mux.HandleFunc("/status", s.status)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server on the port.
func (s *Server) ListenAndServe(port int) error {
	url := fmt.Sprintf(":%d", port)
	lg.Infof("Starting server on %s", url)
	server := &http.Server{Addr: url, Handler: s}
	return server.ListenAndServe()
}

// State returns the current status of the clock.
func (s *Server) State() ClockStatus {
	pos, min := s.m.Position()
	homed, st := s.m.Homed()
	h := min / minutesPerHour
	if h == 0 {
		h = s.m.geo.HoursPerCycle
	}
	return ClockStatus{
		Name:     s.m.Name,
		Homed:    homed,
		Status:   st.String(),
		Position: pos,
		Minutes:  min,
		Time:     fmt.Sprintf("%d:%02d", h, min%minutesPerHour),
		Cycle:    s.m.perCycle,
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.State()); err != nil {
		lg.Errorf("Error writing status: %v", err)
	}
}

func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	c := s.Face()
	if err := c.EncodePNG(w); err != nil {
		lg.Errorf("Error writing image: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Face draws the clock face with the indicator at the tracked position.
func (s *Server) Face() *gg.Context {
	pos, _ := s.m.Position()
	homed, _ := s.m.Homed()
	hours := s.m.geo.HoursPerCycle
	mid := float64(faceSize) / 2
	c := gg.NewContext(faceSize, faceSize)
	c.SetRGB(1, 1, 1)
	c.Clear()
	c.SetRGB(0, 0, 0)
	c.SetLineWidth(4)
	c.DrawCircle(mid, mid, mid-10)
	c.Stroke()
	for i := 0; i < hours; i++ {
		a := float64(i) * 2 * math.Pi / float64(hours)
		c.DrawLine(mid+(mid-40)*math.Sin(a), mid-(mid-40)*math.Cos(a), mid+(mid-15)*math.Sin(a), mid-(mid-15)*math.Cos(a))
		c.Stroke()
	}
	if homed {
		c.SetRGB(0, 0, 1)
	} else {
		c.SetRGB(1, 0, 0)
	}
	a := float64(pos) * 2 * math.Pi / float64(s.m.perCycle)
	c.SetLineWidth(10)
	c.DrawLine(mid, mid, mid+(mid-50)*math.Sin(a), mid-(mid-50)*math.Cos(a))
	c.Stroke()
	return c
}
