// Package nlog is the module's leveled logger. It wraps the standard
// library `log` package rather than reaching for zap/zerolog/logrus:
// the teacher's own go.mod carries no external logging dependency, so
// this ambient concern follows the teacher's own choice rather than
// introducing one it never made.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package nlog

import (
	"log"
	"os"
	"sync/atomic"
)

type Level int32

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

var (
	std   = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	level atomic.Int32
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel changes the minimum level that is actually written out.
func SetLevel(l Level) { level.Store(int32(l)) }

func enabled(l Level) bool { return int32(l) <= level.Load() }

func Errorln(v ...any) {
	if enabled(LevelError) {
		std.Println(append([]any{"E"}, v...)...)
	}
}

func Errorf(format string, v ...any) {
	if enabled(LevelError) {
		std.Printf("E "+format, v...)
	}
}

func Warningln(v ...any) {
	if enabled(LevelWarning) {
		std.Println(append([]any{"W"}, v...)...)
	}
}

func Warningf(format string, v ...any) {
	if enabled(LevelWarning) {
		std.Printf("W "+format, v...)
	}
}

func Infoln(v ...any) {
	if enabled(LevelInfo) {
		std.Println(append([]any{"I"}, v...)...)
	}
}

func Infof(format string, v ...any) {
	if enabled(LevelInfo) {
		std.Printf("I "+format, v...)
	}
}

func Debugln(v ...any) {
	if enabled(LevelDebug) {
		std.Println(append([]any{"D"}, v...)...)
	}
}

func Debugf(format string, v ...any) {
	if enabled(LevelDebug) {
		std.Printf("D "+format, v...)
	}
}
