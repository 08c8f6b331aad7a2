// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command pagebench runs the cross-CPU page allocator benchmarks and
// prints the aggregated reports. All the human readable formatting
// lives here; the pagebench package only emits structured records.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/intuitivelabs/counters"

	"github.com/intuitivelabs/pagebench"
)

func parseCPUList(s string) ([]int, error) {
	var cpus []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("bad cpu %q: %w", tok, err)
		}
		cpus = append(cpus, c)
	}
	return cpus, nil
}

func printReport(rep *pagebench.Report) {
	warn := ""
	if rep.Incomplete {
		warn = " WARN: incomplete run (cpus caught up with each other)"
	}
	fmt.Printf("%s: %.0f iterations/s total%s\n",
		rep.Desc, rep.CombinedRate, warn)
	for _, st := range rep.CPUs {
		full := "full"
		if !st.Full {
			full = fmt.Sprintf("early stop (%d/%d)",
				st.Completed, st.Loops)
		}
		fmt.Printf("  cpu:%d step:%s iters:%d elapsed:%s"+
			" rate:%.0f/s %s\n",
			st.CPU, st.Role, st.Completed, st.Elapsed, st.RatePerSec,
			full)
	}
}

func main() {
	def := pagebench.DefaultConfig()
	var (
		loops   = flag.Uint("loops", uint(def.Loops), "iteration loops")
		order   = flag.Int("order", def.PageOrder, "page order (size class)")
		qsize   = flag.Int("qsize", def.RingSize, "ring size")
		prefill = flag.Int("prefill", def.Prefill, "ring prefill count")
		cpusF   = flag.String("cpus", "0,1", "comma separated cpu list")
		runF    = flag.String("run", "all",
			"comma separated benchmarks to run"+
				" (single_cpu_compare, ring_baseline, cross_cpu_alloc_put)")
		monItvl = flag.Duration("monitor", 0,
			"benchmark counter monitor interval (0 disables it)")
		maxMem = flag.Uint64("maxmem", 0,
			"benchmark memory ceiling in bytes (0 == no limit)")
	)
	flag.Parse()

	cpus, err := parseCPUList(*cpusF)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagebench: %s\n", err)
		os.Exit(2)
	}
	run, err := pagebench.ParseBenchSet(*runF)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagebench: %q: %s\n", *runF, err)
		os.Exit(2)
	}

	cfg := pagebench.DefaultConfig()
	cfg.Loops = uint32(*loops)
	cfg.PageOrder = *order
	cfg.RingSize = *qsize
	cfg.Prefill = *prefill
	cfg.CPUs = cpus
	cfg.Run = run
	cfg.Mem.MaxBenchMem = *maxMem
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "pagebench: bad configuration: %s\n", err)
		os.Exit(2)
	}
	pagebench.SetCfg(cfg)

	if *monItvl > 0 {
		var mon pagebench.CntMonitor
		err := mon.Init(*monItvl,
			func(name string, v counters.Val, rate float64) {
				fmt.Printf("counter %-12s %12d (%.1f/s)\n", name,
					uint64(v), rate)
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "pagebench: monitor: %s\n", err)
			os.Exit(2)
		}
		pagebench.WatchBenchCnts(&mon)
		if err := mon.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "pagebench: monitor: %s\n", err)
			os.Exit(2)
		}
		defer mon.Stop()
	}

	fmt.Printf("pagebench: alloc variant %q, page order %d (%d bytes)\n",
		strings.Join(pagebench.BuildTags, ","), cfg.PageOrder,
		pagebench.OrderSize(cfg.PageOrder))

	t0 := time.Now()
	reps, err := pagebench.RunTimingTests(cfg)
	for _, rep := range reps {
		printReport(rep)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagebench: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("done in %s\n", time.Since(t0))
}
