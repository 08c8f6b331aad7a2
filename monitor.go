// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"errors"
	"sync"
	"time"

	"github.com/intuitivelabs/counters"
	"github.com/intuitivelabs/timestamp"
	"github.com/intuitivelabs/wtimer"
)

// ErrMonItvl is returned for a non-positive monitor poll interval.
var ErrMonItvl = errors.New("invalid monitor interval")

// monitor timer wheel tick (the poll interval resolution)
const monTimerTick = 100 * time.Millisecond

// CntRate converts a cumulative counter into a per second rate, from
// the delta since the previous sample.
type CntRate struct {
	lastT  timestamp.TS
	lastV  counters.Val
	inited bool
	Rate   float64 // last computed rate, events/s
}

// Update records a new sample and returns the updated rate. The first
// sample only arms the baseline and reports a zero rate.
func (r *CntRate) Update(v counters.Val, now timestamp.TS) float64 {
	if !r.inited {
		r.lastT = now
		r.lastV = v
		r.inited = true
		r.Rate = 0
		return 0
	}
	if v < r.lastV {
		// the counter went backwards (reset or Set to a lower value):
		// the delta would underflow, re-arm on the new value instead
		r.lastT = now
		r.lastV = v
		r.Rate = 0
		return 0
	}
	elapsed := now.Sub(r.lastT)
	if elapsed <= 0 {
		// same tick, keep the previous rate
		return r.Rate
	}
	r.Rate = float64(v-r.lastV) * float64(time.Second) / float64(elapsed)
	r.lastT = now
	r.lastV = v
	return r.Rate
}

// MonSinkF receives one watched counter sample: the counter name, its
// cumulative value and the rate since the previous poll.
type MonSinkF func(name string, v counters.Val, rate float64)

type cntWatch struct {
	grp  *counters.Group
	h    counters.Handle
	name string
	rate CntRate
}

// CntMonitor polls a set of counters on a fixed interval, converts the
// cumulative values into rates and hands the samples to a sink
// callback. It has no state machine of its own: read, diff, report,
// sleep.
type CntMonitor struct {
	timers wtimer.WTimer
	timerH wtimer.TimerLnk
	itvl   time.Duration
	sink   MonSinkF

	lock    sync.Mutex
	watches []cntWatch
	running bool
}

// Init prepares the monitor with a poll interval and a sample sink.
func (m *CntMonitor) Init(itvl time.Duration, sink MonSinkF) error {
	if itvl <= 0 {
		return ErrMonItvl
	}
	if sink == nil {
		return errors.New("nil monitor sink")
	}
	m.itvl = itvl
	m.sink = sink
	tick := monTimerTick
	if itvl < tick {
		tick = itvl
	}
	if err := m.timers.Init(tick); err != nil {
		return err
	}
	return nil
}

// Watch adds one counter to the polled set. Safe to call before or
// between polls.
func (m *CntMonitor) Watch(grp *counters.Group, h counters.Handle,
	name string) {
	m.lock.Lock()
	m.watches = append(m.watches, cntWatch{grp: grp, h: h, name: name})
	m.lock.Unlock()
}

// monTimerF is the periodic poll callback. It must be of the
// wtimer handler type; returning true and the interval re-arms it.
func monTimerF(wt *wtimer.WTimer, h *wtimer.TimerLnk,
	p interface{}) (bool, time.Duration) {
	m := p.(*CntMonitor)
	m.pollOnce(timestamp.Now())
	return true, m.itvl
}

// pollOnce samples every watched counter and reports to the sink.
func (m *CntMonitor) pollOnce(now timestamp.TS) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i := range m.watches {
		w := &m.watches[i]
		v := w.grp.Get(w.h)
		rate := w.rate.Update(v, now)
		m.sink(w.name, v, rate)
	}
}

// Start arms the periodic poll. Init must have been called.
func (m *CntMonitor) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.running {
		return nil
	}
	m.timers.Start()
	if err := m.timers.InitTimer(&m.timerH, 0); err != nil {
		return err
	}
	if err := m.timers.Add(&m.timerH, m.itvl, monTimerF, m); err != nil {
		return err
	}
	m.running = true
	return nil
}

// Stop disarms the poll timer and shuts the wheel down, waiting for a
// possibly running poll callback to finish.
func (m *CntMonitor) Stop() {
	m.lock.Lock()
	if !m.running {
		m.lock.Unlock()
		return
	}
	m.running = false
	m.lock.Unlock()
	// outside the lock: the poll callback takes it
	m.timers.DelWait(&m.timerH)
	m.timers.Shutdown()
}
