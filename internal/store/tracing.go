package store

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/mapbridge/internal/action"
)

// TracerName is the instrumentation scope used when no tracer is supplied.
const TracerName = "github.com/dshills/mapbridge/internal/store"

// Tracing opens one span per dispatched action, named after the action
// type. Actions dispatched while another action is in flight, such as the
// notifications a map emits during a command, become child spans of it.
// A nil tracer uses the global provider.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(API) func(Dispatch) Dispatch {
		var spans spanStack
		return func(next Dispatch) Dispatch {
			return func(a action.Action) error {
				if action.IsNil(a) {
					return next(a)
				}
				ctx, span := tracer.Start(spans.top(), a.ActionType(),
					trace.WithSpanKind(trace.SpanKindInternal),
					trace.WithAttributes(
						attribute.String("mapbridge.action.type", a.ActionType()),
						attribute.String("mapbridge.map_id", string(action.TargetOf(a))),
					),
				)
				spans.push(ctx)
				defer func() {
					spans.pop()
					span.End()
				}()

				if err := next(a); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					return err
				}
				return nil
			}
		}
	}
}

// spanStack holds the contexts of the dispatches currently in flight,
// innermost last.
type spanStack struct {
	mu    sync.Mutex
	stack []context.Context
}

func (s *spanStack) top() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return context.Background()
	}
	return s.stack[len(s.stack)-1]
}

func (s *spanStack) push(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, ctx)
}

func (s *spanStack) pop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}
