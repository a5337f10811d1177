// Package store provides in-memory storage for evaluation history.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/calc/pkg/expr"
)

// Outcome represents how an evaluation ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFailed    Outcome = "FAILED"
)

// Evaluation represents one recorded expression and its result.
type Evaluation struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	Outcome    Outcome          `json:"outcome"`
	Result     float64          `json:"result"`
	Error      *EvaluationError `json:"error,omitempty"`
	CreateTime time.Time        `json:"createTime"`
}

// EvaluationError describes a failed evaluation.
type EvaluationError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Pos     int    `json:"pos"`
}

// Stats counts recorded evaluations by outcome and error kind.
type Stats struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ByKind    map[string]int `json:"byKind"`
}

// Store is a thread-safe in-memory history of evaluations, oldest first.
type Store struct {
	mu      sync.RWMutex
	entries []*Evaluation
	byID    map[string]*Evaluation
	limit   int
}

// New creates a new empty store. A positive limit caps the number of kept
// entries, dropping the oldest first; zero keeps everything.
func New(limit int) *Store {
	return &Store{
		byID:  make(map[string]*Evaluation),
		limit: limit,
	}
}

// Record stores the outcome of evaluating expression.
func (s *Store) Record(expression string, result float64, err error) *Evaluation {
	ev := &Evaluation{
		ID:         uuid.NewString(),
		Expression: expression,
		Outcome:    OutcomeSucceeded,
		Result:     result,
		CreateTime: time.Now(),
	}
	if err != nil {
		ev.Outcome = OutcomeFailed
		ev.Result = 0
		ev.Error = &EvaluationError{
			Kind:    expr.KindOf(err).String(),
			Message: err.Error(),
			Pos:     -1,
		}
		var e *expr.Error
		if errors.As(err, &e) {
			ev.Error.Pos = e.Pos
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, ev)
	s.byID[ev.ID] = ev
	if s.limit > 0 && len(s.entries) > s.limit {
		drop := len(s.entries) - s.limit
		for _, old := range s.entries[:drop] {
			delete(s.byID, old.ID)
		}
		s.entries = append([]*Evaluation(nil), s.entries[drop:]...)
	}
	return ev
}

// Get retrieves an evaluation by ID.
func (s *Store) Get(id string) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", id)
	}
	return ev, nil
}

// List returns all evaluations, newest first.
func (s *Store) List() []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Evaluation, len(s.entries))
	for i, ev := range s.entries {
		result[len(s.entries)-1-i] = ev
	}
	return result
}

// Stats summarizes the stored evaluations.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Total: len(s.entries), ByKind: make(map[string]int)}
	for _, ev := range s.entries {
		switch ev.Outcome {
		case OutcomeSucceeded:
			st.Succeeded++
		case OutcomeFailed:
			st.Failed++
			st.ByKind[ev.Error.Kind]++
		}
	}
	return st
}

// Clear removes all evaluations.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.byID = make(map[string]*Evaluation)
}
