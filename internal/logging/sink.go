package logging

import (
	"errors"
	"sync"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"go.uber.org/zap"
)

// #region sink
// Sink accumulates diagnostics for one screening and mirrors each entry to a
// zap logger. A nil *Sink discards everything, so callers never need a guard.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
	logger  *zap.Logger
}

// NewSink creates a sink. A nil logger means entries are only accumulated.
func NewSink(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger}
}

func (s *Sink) add(e Entry) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	fields := []zap.Field{zap.String("code", e.Code)}
	if e.Subject != "" {
		fields = append(fields, zap.String("subject", e.Subject))
	}
	switch e.Level {
	case LevelError:
		s.logger.Error(e.Message, fields...)
	case LevelWarn:
		s.logger.Warn(e.Message, fields...)
	default:
		s.logger.Info(e.Message, fields...)
	}
}

func (s *Sink) Info(code, subject, msg string) {
	s.add(Entry{Level: LevelInfo, Code: code, Subject: subject, Message: msg})
}

func (s *Sink) Warn(code, subject, msg string) {
	s.add(Entry{Level: LevelWarn, Code: code, Subject: subject, Message: msg})
}

func (s *Sink) Error(code, subject, msg string) {
	s.add(Entry{Level: LevelError, Code: code, Subject: subject, Message: msg})
}

// Issues records data-quality errors as warnings, coded by their sentinel.
func (s *Sink) Issues(issues []error) {
	for _, err := range issues {
		s.Warn(IssueCode(err), "", err.Error())
	}
}

// Entries returns a copy of everything recorded so far.
func (s *Sink) Entries() []Entry {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Len is the number of recorded entries.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// #endregion sink

// #region issue-codes
// IssueCode maps a record data-quality error to a stable code.
func IssueCode(err error) string {
	switch {
	case errors.Is(err, crecord.ErrBadDate):
		return "bad_date"
	case errors.Is(err, crecord.ErrUnknownGrade):
		return "unknown_grade"
	case errors.Is(err, crecord.ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, crecord.ErrUnparseableQuantity):
		return "unparseable_quantity"
	case errors.Is(err, crecord.ErrMissingDisposition):
		return "missing_disposition"
	case errors.Is(err, crecord.ErrNoLastAction):
		return "no_last_action"
	default:
		return "data_quality"
	}
}

// #endregion issue-codes
