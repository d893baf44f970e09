package hooks

import (
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// contextHook annotates every log entry with the file:line of the callsite,
// derived from the stack at log time.
type contextHook struct {
}

func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook contextHook) Fire(entry *logrus.Entry) error {
	stack := debug.Stack()
	lines := strings.Split(string(stack), "\n")
	foundLoggerBlock := false
	incr := 1
	for i := 0; i < len(lines); i = i + incr {
		if strings.Contains(lines[i], "context_hook.go:") {
			foundLoggerBlock = true
			incr = 2
			continue
		}
		if !foundLoggerBlock {
			continue
		}
		ctx := strings.Split(lines[i], "relocation/")
		entry.Data["file:line"] = strings.TrimSpace(ctx[len(ctx)-1])
	}
	return nil
}
