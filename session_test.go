package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(t *testing.T, s *Session, idx int) *AnswerResult {
	t.Helper()
	require.NoError(t, s.SelectAnswer(idx))
	res, err := s.Submit()
	require.NoError(t, err)
	return res
}

func TestSessionStartsFromDefaults(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	assert.Equal(t, StateAwaitingSelection, s.State)
	assert.Equal(t, 1, s.CurrentQuestion)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 150, s.Energy)
	assert.Equal(t, 4, s.Mastery)
	assert.Equal(t, 2, s.Streak)
	assert.Nil(t, s.Selected)
	assert.False(t, s.View().CanSubmit)
}

func TestSubmitWithoutSelectionChangesNothing(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	before := s.View()

	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)

	after := s.View()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Streak, after.Streak)
	assert.Equal(t, before.Mastery, after.Mastery)
}

func TestSelectAnswer(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	assert.ErrorIs(t, s.SelectAnswer(4), ErrInvalidOption)
	assert.ErrorIs(t, s.SelectAnswer(-1), ErrInvalidOption)

	require.NoError(t, s.SelectAnswer(1))
	require.NoError(t, s.SelectAnswer(0))
	assert.Equal(t, 0, *s.Selected)
	assert.True(t, s.View().CanSubmit)

	_, err := s.Submit()
	require.NoError(t, err)
	assert.ErrorIs(t, s.SelectAnswer(1), ErrAlreadyRevealed)
	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrAlreadyRevealed)
}

func TestCorrectAnswer(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	res := answer(t, s, sessionQuestions[0].Correct)

	assert.True(t, res.Correct)
	assert.Equal(t, ScorePerCorrect, res.ScoreDelta)
	assert.Equal(t, 10, s.Score)
	assert.Equal(t, 165, s.Energy)
	assert.Equal(t, 3, s.Streak)
	// streak reached 3
	assert.Equal(t, 5, s.Mastery)
	assert.Equal(t, 1, res.MasteryDelta)
	assert.Equal(t, StateRevealed, s.State)
}

func TestWrongAnswerResetsStreak(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	res := answer(t, s, 3)

	assert.False(t, res.Correct)
	assert.Equal(t, sessionQuestions[0].Correct, res.CorrectIndex)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.Streak)
	assert.Equal(t, 3, s.Mastery)
	assert.Equal(t, -1, res.MasteryDelta)
}

func TestMasteryBounds(t *testing.T) {
	t.Run("three in a row from zero raises mastery once the streak hits three", func(t *testing.T) {
		d := DefaultSessionDefaults
		d.Streak = 0
		d.TotalQuestions = 10
		s := NewSession("u1", sessionQuestions, d)
		var masteries []int
		for i := 0; i < 4; i++ {
			answer(t, s, s.Question().Correct)
			masteries = append(masteries, s.Mastery)
			require.NoError(t, s.Next())
		}
		assert.Equal(t, []int{4, 4, 5, 6}, masteries)
	})

	t.Run("capped at max", func(t *testing.T) {
		d := DefaultSessionDefaults
		d.Mastery = MaxMastery
		s := NewSession("u1", sessionQuestions, d)
		res := answer(t, s, s.Question().Correct)
		assert.Equal(t, MaxMastery, s.Mastery)
		assert.Equal(t, 0, res.MasteryDelta)
	})

	t.Run("floored at min", func(t *testing.T) {
		d := DefaultSessionDefaults
		d.Mastery = MinMastery
		s := NewSession("u1", sessionQuestions, d)
		answer(t, s, (s.Question().Correct+1)%4)
		assert.Equal(t, MinMastery, s.Mastery)
	})
}

func TestNextAndCompletion(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	assert.ErrorIs(t, s.Next(), ErrNotRevealed)

	for i := 1; i <= s.TotalQuestions(); i++ {
		assert.Equal(t, i, s.CurrentQuestion)
		// questions cycle through the fixed list
		assert.Equal(t, sessionQuestions[(i-1)%len(sessionQuestions)].Text, s.Question().Text)
		answer(t, s, 0)
		require.NoError(t, s.Next())
		assert.Nil(t, s.Selected)
	}
	assert.Equal(t, StateComplete, s.State)
	assert.Nil(t, s.View().Question)
	assert.ErrorIs(t, s.Next(), ErrSessionComplete)
	assert.ErrorIs(t, s.SelectAnswer(0), ErrSessionComplete)
}

func TestReset(t *testing.T) {
	s := NewSession("u1", sessionQuestions, DefaultSessionDefaults)
	answer(t, s, 3)
	require.NoError(t, s.Next())
	answer(t, s, s.Question().Correct)

	s.Reset()
	assert.Equal(t, StateAwaitingSelection, s.State)
	assert.Equal(t, 1, s.CurrentQuestion)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 150, s.Energy)
	assert.Equal(t, 4, s.Mastery)
	assert.Equal(t, 2, s.Streak)
	assert.Nil(t, s.Selected)
	assert.Nil(t, s.Last)
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(time.Hour, sessionQuestions, DefaultSessionDefaults)
	v := m.Start("u1", 2)
	assert.Equal(t, 2, v.TotalQuestions)
	assert.Equal(t, "u1", v.UserID)
	require.NotNil(t, v.Question)

	v, err := m.Do(v.ID, func(s *Session) error { return s.SelectAnswer(0) })
	require.NoError(t, err)
	assert.Equal(t, StateAnswerChosen, v.State)

	_, err = m.Do("missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// a failing step still returns the current view
	v, err = m.Do(v.ID, func(s *Session) error { return s.Next() })
	assert.ErrorIs(t, err, ErrNotRevealed)
	assert.Equal(t, StateAnswerChosen, v.State)
}

func TestSessionManagerEvictsIdleSessions(t *testing.T) {
	m := NewSessionManager(time.Minute, sessionQuestions, DefaultSessionDefaults)
	old := m.Start("u1", 0)
	_, err := m.Do(old.ID, func(s *Session) error {
		s.UpdatedAt = time.Now().Add(-2 * time.Minute)
		return nil
	})
	require.NoError(t, err)

	fresh := m.Start("u2", 0)
	assert.Equal(t, 1, m.Len())
	_, err = m.Do(old.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Do(fresh.ID, nil)
	assert.NoError(t, err)
}
