package checkqueue

import (
	"fmt"

	lg "github.com/Andrej220/go-utils/zlog"
)

// assertf logs and panics when a documented precondition is violated.
//
// Precondition violations (starting an already-started queue, waiting
// twice on one RoundController) are programming errors,
// not recoverable item-level failures, so they panic rather than return an
// error. The log line is emitted first so the cause is visible in
// structured output even though the process is about to unwind.
func assertf(logger lg.ZLogger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if logger != nil {
		logger.Error("checkqueue: precondition violated", lg.String("reason", msg))
	}
	panic("checkqueue: " + msg)
}
