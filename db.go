package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB connects to the hosted postgres store when a URL is configured and
// to the local SQLite file otherwise.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&Question{},
		&Boss{},
		&ActivityLog{},
	)
}

func IsQuestionTableEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Question{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) FindProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := s.db.WithContext(ctx).First(&p, "username = ?", username).Error; err != nil {
		return nil, notFound(err, "profile")
	}
	return &p, nil
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "profile")
	}
	return &p, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, p *Profile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *GormStore) SaveProfile(ctx context.Context, p *Profile) error {
	res := s.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"spark_energy": p.SparkEnergy,
			"inventory":    p.Inventory,
			"equipped":     p.Equipped,
			"achievements": p.Achievements,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("save profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	p.Version++
	return nil
}

func (s *GormStore) TopProfiles(ctx context.Context, n int) ([]Profile, error) {
	var ps []Profile
	if err := s.db.WithContext(ctx).Order("spark_energy DESC").Limit(n).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("top profiles: %w", err)
	}
	return ps, nil
}

func (s *GormStore) ProfilesByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ps []Profile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("profiles by ids: %w", err)
	}
	return ps, nil
}

func (s *GormStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	var ps []Profile
	if err := s.db.WithContext(ctx).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return ps, nil
}

func (s *GormStore) CountProfiles(ctx context.Context, role string) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&Profile{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// QuestionsFor lists a subject's questions; difficulty <= 0 means any.
func (s *GormStore) QuestionsFor(ctx context.Context, subject string, difficulty int) ([]Question, error) {
	q := s.db.WithContext(ctx).Where("subject = ?", subject)
	if difficulty > 0 {
		q = q.Where("difficulty = ?", difficulty)
	}
	var qs []Question
	if err := q.Order("id").Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("questions for %s: %w", subject, err)
	}
	return qs, nil
}

func (s *GormStore) AddQuestion(ctx context.Context, q *Question) error {
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("add question: %w", err)
	}
	return nil
}

func (s *GormStore) CountQuestions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Question{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *GormStore) BossesFor(ctx context.Context, subject string) ([]Boss, error) {
	var bs []Boss
	if err := s.db.WithContext(ctx).Where("subject = ?", subject).Order("id").Find(&bs).Error; err != nil {
		return nil, fmt.Errorf("bosses for %s: %w", subject, err)
	}
	return bs, nil
}

func (s *GormStore) LogActivity(ctx context.Context, a *ActivityLog) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

func (s *GormStore) ActivityCounts(ctx context.Context, userID string) (map[string]SubjectStats, error) {
	type row struct {
		Subject string
		Total   int64
		Correct int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&ActivityLog{}).
		Select("subject, COUNT(*) AS total, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct").
		Where("user_id = ?", userID).
		Group("subject").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("activity counts: %w", err)
	}
	out := make(map[string]SubjectStats, len(rows))
	for _, r := range rows {
		out[r.Subject] = SubjectStats{Total: r.Total, Correct: r.Correct}
	}
	return out, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
