package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	StudentStartingEnergy = 100
	TeacherStartingEnergy = 0
)

type ProfileService struct {
	store   Store
	board   *Leaderboard
	log     *zap.Logger
	retries int
}

func NewProfileService(store Store, board *Leaderboard, log *zap.Logger, retries int) *ProfileService {
	if retries < 1 {
		retries = 1
	}
	return &ProfileService{store: store, board: board, log: log.Named("profiles"), retries: retries}
}

// Login returns the profile owning the email's username, creating it on
// first sight.
func (s *ProfileService) Login(ctx context.Context, email, role string) (*Profile, bool, error) {
	username, ok := usernameFromEmail(email)
	if !ok {
		return nil, false, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "":
		role = RoleStudent
	case RoleStudent, RoleTeacher:
	default:
		return nil, false, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	p, err := s.store.FindProfileByUsername(ctx, username)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	energy := StudentStartingEnergy
	if role == RoleTeacher {
		energy = TeacherStartingEnergy
	}
	p = &Profile{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		Role:         role,
		SparkEnergy:  energy,
		Inventory:    datatypes.JSONSlice[string]{},
		Equipped:     datatypes.NewJSONType(map[string]string{}),
		Achievements: datatypes.JSONSlice[string]{},
		Version:      1,
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		// a concurrent login may have created the same username first
		if existing, ferr := s.store.FindProfileByUsername(ctx, username); ferr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	s.log.Info("profile created", zap.String("username", username), zap.String("role", role))
	s.board.Record(ctx, p)
	return p, true, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	return s.store.GetProfile(ctx, id)
}

// ScoreResult is a profile after a mutation plus the achievements it unlocked.
type ScoreResult struct {
	Profile         *Profile
	NewAchievements []Achievement
}

// UpdateScore adds delta to the user's energy and awards every achievement
// that became satisfied. Negative deltas are applied as given.
func (s *ProfileService) UpdateScore(ctx context.Context, id string, delta int) (*ScoreResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	var fresh []Achievement
	p, err := s.mutate(ctx, id, func(p *Profile) error {
		p.SparkEnergy += delta
		fresh = awardAchievements(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ScoreResult{Profile: p, NewAchievements: fresh}, nil
}

type ProgressInput struct {
	UserID     string `json:"userId"`
	Subject    string `json:"subject"`
	IsCorrect  *bool  `json:"is_correct"`
	QuestionID *uint  `json:"questionId"`
	Difficulty *int   `json:"difficulty"`
	TimeSpent  *int   `json:"time_spent_ms"`
}

func (s *ProfileService) LogProgress(ctx context.Context, in ProgressInput) error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: userId is required", ErrValidation)
	case normalizeSubject(in.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrValidation)
	case in.IsCorrect == nil:
		return fmt.Errorf("%w: is_correct is required", ErrValidation)
	}
	if _, err := s.store.GetProfile(ctx, in.UserID); err != nil {
		return err
	}
	answersTotal.WithLabelValues(normalizeSubject(in.Subject), fmt.Sprint(*in.IsCorrect)).Inc()
	return s.store.LogActivity(ctx, &ActivityLog{
		UserID:     in.UserID,
		Subject:    normalizeSubject(in.Subject),
		IsCorrect:  *in.IsCorrect,
		QuestionID: in.QuestionID,
		Difficulty: in.Difficulty,
		TimeSpent:  in.TimeSpent,
	})
}

func (s *ProfileService) Summary(ctx context.Context, id string) (*Profile, StudentStats, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, StudentStats{}, err
	}
	counts, err := s.store.ActivityCounts(ctx, id)
	if err != nil {
		return nil, StudentStats{}, err
	}
	return p, summarize(counts), nil
}

// mutate runs fn against a fresh copy of the profile and writes it back with
// a version check, retrying from a new read when another writer got there
// first. fn must be safe to call more than once.
func (s *ProfileService) mutate(ctx context.Context, id string, fn func(p *Profile) error) (*Profile, error) {
	for attempt := 1; attempt <= s.retries; attempt++ {
		cur, err := s.store.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.clone()
		if err := fn(&next); err != nil {
			return nil, err
		}
		err = s.store.SaveProfile(ctx, &next)
		if err == nil {
			if next.SparkEnergy != cur.SparkEnergy {
				s.board.Record(ctx, &next)
			}
			return &next, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		s.log.Debug("profile version conflict", zap.String("id", id), zap.Int("attempt", attempt))
	}
	return nil, ErrConflict
}
