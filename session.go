package main

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	StateAwaitingSelection SessionState = "awaiting_selection"
	StateAnswerChosen      SessionState = "answer_chosen"
	StateRevealed          SessionState = "revealed"
	StateComplete          SessionState = "complete"
)

const (
	ScorePerCorrect  = 10
	EnergyPerCorrect = 15
	MasteryStreak    = 3
	MinMastery       = 1
	MaxMastery       = 10
)

var (
	ErrNoSelection     = errors.New("no answer selected")
	ErrAlreadyRevealed = errors.New("answer already revealed")
	ErrNotRevealed     = errors.New("answer not submitted yet")
	ErrSessionComplete = errors.New("quiz already complete")
	ErrInvalidOption   = errors.New("option index out of range")
)

type SessionQuestion struct {
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Correct     int      `json:"-"`
	Explanation string   `json:"-"`
	Difficulty  string   `json:"difficulty"`
	Subject     string   `json:"subject"`
}

// sessionQuestions is the fixed list a session cycles through by index.
var sessionQuestions = []SessionQuestion{
	{Text: "What is 15 + 27?", Options: []string{"42", "32", "52", "37"}, Correct: 0, Explanation: "15 + 27 = 42", Difficulty: "medium", Subject: "math"},
	{Text: "How many sides does a hexagon have?", Options: []string{"5", "6", "7", "8"}, Correct: 1, Explanation: "Hexa means six!", Difficulty: "easy", Subject: "math"},
	{Text: "What is ¾ of 100?", Options: []string{"25", "50", "75", "100"}, Correct: 2, Explanation: "100 ÷ 4 = 25, 25 × 3 = 75", Difficulty: "hard", Subject: "math"},
}

// SessionDefaults are the values a session starts with and resets to.
type SessionDefaults struct {
	TotalQuestions int
	Score          int
	Energy         int
	Mastery        int
	Streak         int
}

var DefaultSessionDefaults = SessionDefaults{
	TotalQuestions: 5,
	Score:          0,
	Energy:         150,
	Mastery:        4,
	Streak:         2,
}

type AnswerResult struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Selected     int    `json:"selected"`
	Explanation  string `json:"explanation"`
	ScoreDelta   int    `json:"scoreDelta"`
	EnergyDelta  int    `json:"energyDelta"`
	MasteryDelta int    `json:"masteryDelta"`
	Subject      string `json:"-"`
}

// Session is a single player's run through the fixed question list.
// It is not safe for concurrent use; SessionManager serializes access.
type Session struct {
	ID              string
	UserID          string
	State           SessionState
	CurrentQuestion int
	Score           int
	Energy          int
	Mastery         int
	Streak          int
	Selected        *int
	Last            *AnswerResult
	UpdatedAt       time.Time

	defaults  SessionDefaults
	questions []SessionQuestion
}

func NewSession(userID string, questions []SessionQuestion, d SessionDefaults) *Session {
	if d.TotalQuestions < 1 {
		d.TotalQuestions = 1
	}
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		defaults:  d,
		questions: questions,
	}
	s.Reset()
	return s
}

func (s *Session) TotalQuestions() int { return s.defaults.TotalQuestions }

func (s *Session) Question() SessionQuestion {
	return s.questions[(s.CurrentQuestion-1)%len(s.questions)]
}

// SelectAnswer records or replaces the choice before reveal.
func (s *Session) SelectAnswer(index int) error {
	switch s.State {
	case StateRevealed:
		return ErrAlreadyRevealed
	case StateComplete:
		return ErrSessionComplete
	}
	if index < 0 || index >= len(s.Question().Options) {
		return ErrInvalidOption
	}
	s.Selected = &index
	s.State = StateAnswerChosen
	s.touch()
	return nil
}

// Submit reveals the answer and applies the scoring rules. Without a
// selection, or after reveal, nothing changes.
func (s *Session) Submit() (*AnswerResult, error) {
	switch s.State {
	case StateAwaitingSelection:
		return nil, ErrNoSelection
	case StateRevealed:
		return nil, ErrAlreadyRevealed
	case StateComplete:
		return nil, ErrSessionComplete
	}
	q := s.Question()
	res := &AnswerResult{
		Correct:      *s.Selected == q.Correct,
		CorrectIndex: q.Correct,
		Selected:     *s.Selected,
		Explanation:  q.Explanation,
		Subject:      q.Subject,
	}
	before := s.Mastery
	if res.Correct {
		s.Score += ScorePerCorrect
		s.Energy += EnergyPerCorrect
		s.Streak++
		if s.Streak >= MasteryStreak {
			s.Mastery = min(MaxMastery, s.Mastery+1)
		}
		res.ScoreDelta = ScorePerCorrect
		res.EnergyDelta = EnergyPerCorrect
	} else {
		s.Streak = 0
		s.Mastery = max(MinMastery, s.Mastery-1)
	}
	res.MasteryDelta = s.Mastery - before
	s.Last = res
	s.State = StateRevealed
	s.touch()
	return res, nil
}

// Next advances past a revealed question, ending the quiz after the last one.
func (s *Session) Next() error {
	switch s.State {
	case StateComplete:
		return ErrSessionComplete
	case StateAwaitingSelection, StateAnswerChosen:
		return ErrNotRevealed
	}
	s.CurrentQuestion++
	s.Selected = nil
	s.Last = nil
	if s.CurrentQuestion > s.defaults.TotalQuestions {
		s.State = StateComplete
	} else {
		s.State = StateAwaitingSelection
	}
	s.touch()
	return nil
}

func (s *Session) Reset() {
	s.State = StateAwaitingSelection
	s.CurrentQuestion = 1
	s.Score = s.defaults.Score
	s.Energy = s.defaults.Energy
	s.Mastery = s.defaults.Mastery
	s.Streak = s.defaults.Streak
	s.Selected = nil
	s.Last = nil
	s.touch()
}

func (s *Session) touch() { s.UpdatedAt = time.Now() }

type SessionView struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId,omitempty"`
	State           SessionState     `json:"state"`
	CurrentQuestion int              `json:"currentQuestion"`
	TotalQuestions  int              `json:"totalQuestions"`
	Score           int              `json:"score"`
	Energy          int              `json:"energy"`
	Mastery         int              `json:"mastery"`
	Streak          int              `json:"streak"`
	Selected        *int             `json:"selected"`
	CanSubmit       bool             `json:"canSubmit"`
	Question        *SessionQuestion `json:"question,omitempty"`
	Result          *AnswerResult    `json:"result,omitempty"`
}

// View hides the correct index until the answer is revealed.
func (s *Session) View() SessionView {
	v := SessionView{
		ID:              s.ID,
		UserID:          s.UserID,
		State:           s.State,
		CurrentQuestion: s.CurrentQuestion,
		TotalQuestions:  s.defaults.TotalQuestions,
		Score:           s.Score,
		Energy:          s.Energy,
		Mastery:         s.Mastery,
		Streak:          s.Streak,
		Selected:        s.Selected,
		CanSubmit:       s.State == StateAnswerChosen,
		Result:          s.Last,
	}
	if s.State != StateComplete {
		q := s.Question()
		v.Question = &q
	}
	return v
}

// SessionManager holds live sessions in memory.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	questions []SessionQuestion
	defaults  SessionDefaults
}

func NewSessionManager(ttl time.Duration, questions []SessionQuestion, d SessionDefaults) *SessionManager {
	return &SessionManager{
		sessions:  map[string]*Session{},
		ttl:       ttl,
		questions: questions,
		defaults:  d,
	}
}

func (m *SessionManager) Start(userID string, totalQuestions int) SessionView {
	d := m.defaults
	if totalQuestions > 0 {
		d.TotalQuestions = totalQuestions
	}
	s := NewSession(userID, m.questions, d)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(time.Now())
	m.sessions[s.ID] = s
	return s.View()
}

// Do runs fn on the session under the manager lock and returns its view.
func (m *SessionManager) Do(id string, fn func(s *Session) error) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(time.Now())
	s, ok := m.sessions[id]
	if !ok {
		return SessionView{}, ErrNotFound
	}
	if fn != nil {
		if err := fn(s); err != nil {
			return s.View(), err
		}
	}
	return s.View(), nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) evictLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
