package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/mapbridge/internal/action"
)

const maxLineSize = 1 << 20

// DispatchJSON decodes one wire action and dispatches it.
func (app *Application) DispatchJSON(data []byte) error {
	a, err := action.Unmarshal(data)
	if err != nil {
		return NewOperationError("decode", "", err)
	}
	if err := app.Dispatch(a); err != nil {
		return NewOperationError("dispatch", a.ActionType(), err)
	}
	return nil
}

// Replay dispatches one wire action per line of r until EOF, the first
// failure, or ctx is done. Blank lines and lines starting with # are
// skipped. It returns the number of actions dispatched.
func (app *Application) Replay(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n, line := 0, 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return n, err
		}

		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 || data[0] == '#' {
			continue
		}

		if err := app.DispatchJSON(data); err != nil {
			var oe *OperationError
			if errors.As(err, &oe) {
				oe.WithContext(fmt.Sprintf("line %d", line))
			}
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, NewOperationError("read", "actions", err)
	}
	return n, nil
}
