// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"github.com/intuitivelabs/slog"
)

// Log is the generic package logger. It can be re-initialised or
// have its level changed from the code using the package.
var Log slog.Log

func init() {
	slog.Init(&Log, slog.LNOTICE, slog.LOptNone, slog.LStdErr)
}

// DBGon returns true if debug messages are enabled.
func DBGon() bool {
	return Log.DBGon()
}

// WARNon returns true if warning messages are enabled.
func WARNon() bool {
	return Log.WARNon()
}

// DBG is a shorthand for Log.DBG().
func DBG(f string, a ...interface{}) {
	Log.DBG(f, a...)
}

// INFO is a shorthand for Log.INFO().
func INFO(f string, a ...interface{}) {
	Log.INFO(f, a...)
}

// WARN is a shorthand for Log.WARN().
func WARN(f string, a ...interface{}) {
	Log.WARN(f, a...)
}

// ERR is a shorthand for Log.ERR().
func ERR(f string, a ...interface{}) {
	Log.ERR(f, a...)
}

// BUG is a shorthand for Log.BUG().
func BUG(f string, a ...interface{}) {
	Log.BUG(f, a...)
}
