package evaluation

import "log/slog"

// Notifier receives the transient, user-visible notices the session emits
// (toasts in the original interface). Implementations must not block.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards every notice.
type NopNotifier struct{}

func (NopNotifier) Info(string)    {}
func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// LogNotifier writes notices to a structured logger. Default when no
// notifier is injected.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Info(msg string)    { n.logger.Info("notice", "kind", "info", "message", msg) }
func (n *LogNotifier) Success(msg string) { n.logger.Info("notice", "kind", "success", "message", msg) }
func (n *LogNotifier) Error(msg string)   { n.logger.Warn("notice", "kind", "error", "message", msg) }
