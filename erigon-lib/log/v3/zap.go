// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger backs Logger with a zap.SugaredLogger. zap has no built-in
// Trace or Crit level, so both ride on the nearest real level (Debug,
// Error) with an extra "lvl" field marking the distinction, so log15 readers
// of the output can still tell them apart.
type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a Logger around a sensible console zap core. ctx is an
// alternating key/value list applied to every subsequent call.
func New(ctx ...interface{}) Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "t"
	cfg.LevelKey = "lvl"
	cfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(os.Stderr)), zapcore.DebugLevel)
	base := zap.New(core)
	l := &zapLogger{s: base.Sugar()}
	if len(ctx) == 0 {
		return l
	}
	return l.New(ctx...)
}

func (l *zapLogger) Trace(msg string, ctx ...interface{}) {
	l.s.Debugw(msg, append(ctx, "lvl", "trace")...)
}

func (l *zapLogger) Debug(msg string, ctx ...interface{}) { l.s.Debugw(msg, ctx...) }
func (l *zapLogger) Info(msg string, ctx ...interface{})  { l.s.Infow(msg, ctx...) }
func (l *zapLogger) Warn(msg string, ctx ...interface{})  { l.s.Warnw(msg, ctx...) }
func (l *zapLogger) Error(msg string, ctx ...interface{}) { l.s.Errorw(msg, ctx...) }

func (l *zapLogger) Crit(msg string, ctx ...interface{}) {
	l.s.Errorw(msg, append(ctx, "lvl", "crit")...)
}

func (l *zapLogger) New(ctx ...interface{}) Logger {
	return &zapLogger{s: l.s.With(ctx...)}
}
