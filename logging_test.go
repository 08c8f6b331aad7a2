// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"testing"
)

// the package logger must come up initialised at the default level:
// warnings on, debug off
func TestLogDefaults(t *testing.T) {
	if DBGon() {
		t.Errorf("debug logging enabled by default")
	}
	if !WARNon() {
		t.Errorf("warnings disabled by default")
	}
	// the shorthands must work on the default-initialised logger
	WARN("logger self test: %d\n", 1)
	INFO("logger self test: %d\n", 2)
}
