package main

import (
	"context"
	"fmt"
)

const DefaultSubject = "math"

type QuizService struct {
	store  Store
	picker *picker
}

func NewQuizService(store Store, seed *int64) *QuizService {
	return &QuizService{store: store, picker: newPicker(seed)}
}

// NextQuestion draws uniformly from subject+difficulty, falling back to the
// whole subject. nil means the subject has no questions.
func (s *QuizService) NextQuestion(ctx context.Context, subject string, difficulty int) (*Question, error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	if difficulty > 0 {
		pool, err := s.store.QuestionsFor(ctx, subject, difficulty)
		if err != nil {
			return nil, err
		}
		if q := pickQuestion(s.picker, pool); q != nil {
			return q, nil
		}
	}
	pool, err := s.store.QuestionsFor(ctx, subject, 0)
	if err != nil {
		return nil, err
	}
	return pickQuestion(s.picker, pool), nil
}

func (s *QuizService) AddQuestion(ctx context.Context, in QInput) (*Question, error) {
	q, err := in.ToQuestion()
	if err != nil {
		return nil, err
	}
	if err := s.store.AddQuestion(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *QuizService) Boss(ctx context.Context, subject string) (*Boss, error) {
	subject = normalizeSubject(subject)
	bosses, err := s.store.BossesFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	b := pickBoss(s.picker, bosses)
	if b == nil {
		return nil, fmt.Errorf("boss for %q: %w", subject, ErrNotFound)
	}
	return b, nil
}

type AdminStats struct {
	TotalQuestions int64 `json:"totalQuestions"`
	TotalStudents  int64 `json:"totalStudents"`
}

func (s *QuizService) AdminStats(ctx context.Context) (AdminStats, error) {
	var st AdminStats
	var err error
	if st.TotalQuestions, err = s.store.CountQuestions(ctx); err != nil {
		return st, err
	}
	if st.TotalStudents, err = s.store.CountProfiles(ctx, RoleStudent); err != nil {
		return st, err
	}
	return st, nil
}
