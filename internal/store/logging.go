package store

import (
	"github.com/dshills/mapbridge/internal/action"
)

// Logger is the logging surface middleware writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Logging records actions matching filter at debug level, and failed
// dispatches at error level. A nil filter logs every action.
func Logging(logger Logger, filter *Filter) Middleware {
	if logger == nil {
		logger = NopLogger{}
	}
	return func(API) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(a action.Action) error {
				if action.IsNil(a) {
					return next(a)
				}
				ok, err := filter.Match(a)
				if err != nil {
					logger.Warn("filter: %v", err)
				}
				if ok {
					logger.Debug("dispatch %s", describe(a))
				}

				if err := next(a); err != nil {
					logger.Error("dispatch %s failed: %v", a.ActionType(), err)
					return err
				}
				return nil
			}
		}
	}
}

// describe renders the wire form of a when it has one.
func describe(a action.Action) string {
	if data, err := action.Marshal(a); err == nil {
		return string(data)
	}
	return a.ActionType()
}
