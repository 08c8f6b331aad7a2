// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build linux

package pagebench

import (
	"golang.org/x/sys/unix"
)

// pinCPU pins the calling OS thread to the given CPU.
// The caller must have the goroutine locked to its thread
// (runtime.LockOSThread()) for the pinning to stick.
func pinCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
