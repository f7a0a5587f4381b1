package crawler

import "log/slog"

// slogOrNil makes logging calls safe when no logger was configured.
type slogOrNil struct {
	logger *slog.Logger
}

func (l *slogOrNil) Info(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *slogOrNil) Warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l *slogOrNil) Debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
