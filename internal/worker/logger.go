// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package worker

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// wmLogger adapts zerolog to watermill.LoggerAdapter so router internals
// log through the same structured pipeline as everything else.
type wmLogger struct {
	log zerolog.Logger
}

func (l wmLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.event(l.log.Error().Err(err), fields, msg)
}

func (l wmLogger) Info(msg string, fields watermill.LogFields) {
	l.event(l.log.Info(), fields, msg)
}

func (l wmLogger) Debug(msg string, fields watermill.LogFields) {
	l.event(l.log.Debug(), fields, msg)
}

func (l wmLogger) Trace(msg string, fields watermill.LogFields) {
	l.event(l.log.Trace(), fields, msg)
}

func (l wmLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := l.log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return wmLogger{log: ctx.Logger()}
}

func (l wmLogger) event(e *zerolog.Event, fields watermill.LogFields, msg string) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
