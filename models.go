package main

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// --- Profile ---

type Profile struct {
	ID           string                                `gorm:"primaryKey;size:36" json:"id"`
	Username     string                                `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string                                `gorm:"size:255" json:"email"`
	Role         string                                `gorm:"size:16;not null" json:"role"`
	SparkEnergy  int                                   `gorm:"not null;index" json:"spark_energy"`
	Inventory    datatypes.JSONSlice[string]           `json:"inventory"`
	Equipped     datatypes.JSONType[map[string]string] `json:"equipped"`
	Achievements datatypes.JSONSlice[string]           `json:"achievements"`
	Version      int                                   `gorm:"not null" json:"-"` // bumped on every mutation
	CreatedAt    time.Time                             `json:"created_at"`
	UpdatedAt    time.Time                             `json:"updated_at"`
}

// EquippedMap returns a mutable copy of the slot -> icon mapping.
func (p *Profile) EquippedMap() map[string]string {
	out := map[string]string{}
	for k, v := range p.Equipped.Data() {
		out[k] = v
	}
	return out
}

func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// clone copies the mutable collections so a mutation attempt can be
// discarded without touching the profile it was read from.
func (p Profile) clone() Profile {
	p.Inventory = append(datatypes.JSONSlice[string]{}, p.Inventory...)
	p.Achievements = append(datatypes.JSONSlice[string]{}, p.Achievements...)
	p.Equipped = datatypes.NewJSONType(p.EquippedMap())
	return p
}

// --- Questions ---

type Question struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Subject     string                      `gorm:"size:32;not null;index:idx_subject_difficulty" json:"subject"`
	Difficulty  int                         `gorm:"not null;index:idx_subject_difficulty" json:"difficulty"`
	Text        string                      `gorm:"not null" json:"text"`
	Options     datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	Correct     int                         `gorm:"not null" json:"correct"`
	Explanation string                      `json:"explanation"`
	CreatedAt   time.Time                   `json:"-"`
	UpdatedAt   time.Time                   `json:"-"`
}

// --- Bosses ---

type Boss struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Subject string `gorm:"size:32;not null;index" json:"subject"`
	Name    string `gorm:"not null" json:"name"`
	HP      int    `gorm:"not null" json:"hp"`
	Icon    string `json:"icon"`
	Reward  int    `gorm:"not null" json:"reward"`
}

// --- Activity ---

type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	Subject    string    `gorm:"size:32;not null" json:"subject"`
	IsCorrect  bool      `gorm:"not null" json:"is_correct"`
	QuestionID *uint     `json:"question_id,omitempty"`
	Difficulty *int      `json:"difficulty,omitempty"`
	TimeSpent  *int      `json:"time_spent_ms,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// --- Derived views ---

type LeaderboardEntry struct {
	Rank        int               `json:"rank"`
	Username    string            `json:"username"`
	SparkEnergy int               `json:"spark_energy"`
	Equipped    map[string]string `json:"equipped"`
}

type SubjectStats struct {
	Total    int64 `json:"total"`
	Correct  int64 `json:"correct"`
	Accuracy int   `json:"accuracy"`
}

type StudentStats struct {
	Total     int64                   `json:"total"`
	Correct   int64                   `json:"correct"`
	Accuracy  int                     `json:"accuracy"`
	BySubject map[string]SubjectStats `json:"bySubject"`
}
