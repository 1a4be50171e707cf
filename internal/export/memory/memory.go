package memory

import (
	"context"
	"fmt"
	"sync"

	"hisab/internal/core"
	ports "hisab/internal/export"
)

// Store is an in-process report sink used by tests and local runs without
// Google credentials.
type Store struct {
	mu    sync.Mutex
	items []core.DailyReport
	err   error
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailWith makes every subsequent Append return err. Pass nil to restore
// normal behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Append stores the snapshot and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rep core.DailyReport) (string, error) {
	if err := rep.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.items = append(s.items, rep)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Reports returns a copy of everything appended so far.
func (s *Store) Reports() []core.DailyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DailyReport(nil), s.items...)
}
