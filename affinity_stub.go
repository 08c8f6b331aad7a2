// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !linux

package pagebench

import (
	"sync"
)

var pinWarnOnce sync.Once

// pinCPU placeholder for platforms without sched_setaffinity().
// The tasks still run, but without pinning the cross-CPU numbers are
// not meaningful (a migrating task destroys the isolation the
// benchmark measures), so warn once.
func pinCPU(cpu int) error {
	pinWarnOnce.Do(func() {
		WARN("cpu pinning not supported on this platform," +
			" benchmark results will not be reliable\n")
	})
	return nil
}
