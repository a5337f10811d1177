package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/calc/pkg/expr"
)

func record(s *Store, line string) *Evaluation {
	v, err := expr.Eval(line)
	return s.Record(line, v, err)
}

func TestRecordAndGet(t *testing.T) {
	s := New(0)

	ok := record(s, "2+3*4")
	assert.Equal(t, OutcomeSucceeded, ok.Outcome)
	assert.Equal(t, 14.0, ok.Result)
	assert.Nil(t, ok.Error)

	bad := record(s, "1 / 0")
	assert.Equal(t, OutcomeFailed, bad.Outcome)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "DivideByZero", bad.Error.Kind)
	assert.Equal(t, expr.MsgDivideByZero, bad.Error.Message)
	assert.Equal(t, 2, bad.Error.Pos)

	got, err := s.Get(ok.ID)
	require.NoError(t, err)
	assert.Same(t, ok, got)

	_, err = s.Get("missing")
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	s := New(0)
	for i := 0; i < 3; i++ {
		record(s, fmt.Sprintf("%d", i))
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "2", list[0].Expression)
	assert.Equal(t, "0", list[2].Expression)
}

func TestLimitDropsOldest(t *testing.T) {
	s := New(2)
	first := record(s, "1")
	record(s, "2")
	record(s, "3")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].Expression)
	assert.Equal(t, "2", list[1].Expression)

	_, err := s.Get(first.ID)
	assert.Error(t, err)
}

func TestStatsAndClear(t *testing.T) {
	s := New(0)
	record(s, "1+1")
	record(s, "(")
	record(s, "+")
	record(s, "x")

	st := s.Stats()
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.Succeeded)
	assert.Equal(t, 3, st.Failed)
	assert.Equal(t, 2, st.ByKind["InvalidInput"])
	assert.Equal(t, 1, st.ByKind["UnbalancedParens"])

	s.Clear()
	assert.Empty(t, s.List())
	assert.Equal(t, 0, s.Stats().Total)
}

func TestConcurrentRecord(t *testing.T) {
	s := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				record(s, fmt.Sprintf("%d*%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List(), 50)
}
