// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"testing"
	"time"

	"github.com/intuitivelabs/counters"
	"github.com/intuitivelabs/timestamp"
)

func TestCntRate(t *testing.T) {
	var r CntRate
	now := timestamp.Now()

	// first sample only arms the baseline
	if rate := r.Update(100, now); rate != 0 {
		t.Fatalf("first sample rate %f, expected 0", rate)
	}
	// +200 events over 2s => 100/s
	if rate := r.Update(300, now.Add(2*time.Second)); rate != 100 {
		t.Fatalf("rate %f, expected 100", rate)
	}
	// same instant: keep the previous rate
	if rate := r.Update(400, now.Add(2*time.Second)); rate != 100 {
		t.Fatalf("same-instant rate %f, expected the previous 100", rate)
	}
	// idle interval => zero rate
	if rate := r.Update(300, now.Add(3*time.Second)); rate != 0 {
		t.Fatalf("idle rate %f, expected 0", rate)
	}
	// a counter going backwards (reset) must re-arm, not underflow
	if rate := r.Update(100, now.Add(4*time.Second)); rate != 0 {
		t.Fatalf("reset rate %f, expected 0", rate)
	}
	if rate := r.Update(200, now.Add(5*time.Second)); rate != 100 {
		t.Fatalf("post-reset rate %f, expected 100", rate)
	}
}

func TestMonitorPoll(t *testing.T) {
	grp := counters.NewGroup("pagebench_test", nil, 10)
	if grp == nil {
		grp = &counters.Group{}
		grp.Init("pagebench_test", nil, 10)
	}
	var h counters.Handle
	def := counters.Def{H: &h, Name: "polled", Desc: "test counter"}
	if _, ok := grp.RegisterDef(&def); !ok {
		t.Fatalf("failed to register the test counter")
	}

	type sample struct {
		name string
		v    counters.Val
		rate float64
	}
	var got []sample
	m := &CntMonitor{
		itvl: time.Second,
		sink: func(name string, v counters.Val, rate float64) {
			got = append(got, sample{name, v, rate})
		},
	}
	m.Watch(grp, h, "polled")

	now := timestamp.Now()
	m.pollOnce(now) // baseline
	grp.Add(h, 50)
	m.pollOnce(now.Add(time.Second))

	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].name != "polled" || got[0].v != 0 || got[0].rate != 0 {
		t.Fatalf("bad baseline sample: %+v", got[0])
	}
	if got[1].v != 50 || got[1].rate != 50 {
		t.Fatalf("bad sample: %+v", got[1])
	}
}

func TestMonitorInitErrors(t *testing.T) {
	var m CntMonitor
	sink := func(string, counters.Val, float64) {}
	if err := m.Init(0, sink); err != ErrMonItvl {
		t.Fatalf("expected ErrMonItvl, got %v", err)
	}
	if err := m.Init(time.Second, nil); err == nil {
		t.Fatalf("nil sink accepted")
	}
}
