package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==== JSON input structures ====

type QInput struct {
	Subject     string   `json:"subject"`
	Difficulty  int      `json:"difficulty"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

type BossInput struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	HP      int    `json:"hp"`
	Icon    string `json:"icon"`
	Reward  int    `json:"reward"`
}

type SeedFile struct {
	Questions []QInput    `json:"questions"`
	Bosses    []BossInput `json:"bosses"`
}

// ToQuestion normalizes and validates one question.
func (in QInput) ToQuestion() (Question, error) {
	q := Question{
		Subject:     normalizeSubject(in.Subject),
		Difficulty:  in.Difficulty,
		Text:        strings.TrimSpace(in.Text),
		Correct:     in.Correct,
		Explanation: strings.TrimSpace(in.Explanation),
	}
	if q.Difficulty == 0 {
		q.Difficulty = 1
	}
	switch {
	case q.Subject == "":
		return q, fmt.Errorf("%w: subject is required", ErrValidation)
	case q.Text == "":
		return q, fmt.Errorf("%w: text is required", ErrValidation)
	case len(in.Options) != 4:
		return q, fmt.Errorf("%w: exactly 4 options required, got %d", ErrValidation, len(in.Options))
	case in.Correct < 0 || in.Correct >= len(in.Options):
		return q, fmt.Errorf("%w: correct index %d out of range", ErrValidation, in.Correct)
	case q.Difficulty < 1:
		return q, fmt.Errorf("%w: difficulty must be positive", ErrValidation)
	}
	opts := make(datatypes.JSONSlice[string], 0, len(in.Options))
	for _, o := range in.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return q, fmt.Errorf("%w: empty option", ErrValidation)
		}
		opts = append(opts, o)
	}
	q.Options = opts
	return q, nil
}

// ==== Seeder ====

// LoadSeedFile reads a seed file. A missing file yields the built-in bank.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSeed(), nil
	}
	if err != nil {
		return nil, err
	}
	var sf SeedFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	return &sf, nil
}

// Seed inserts all questions and bosses in one transaction.
func Seed(db *gorm.DB, sf *SeedFile) error {
	qs := make([]Question, 0, len(sf.Questions))
	for i, in := range sf.Questions {
		q, err := in.ToQuestion()
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		qs = append(qs, q)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for i := range qs {
			if err := tx.Create(&qs[i]).Error; err != nil {
				return err
			}
		}
		for _, in := range sf.Bosses {
			b := Boss{
				Subject: normalizeSubject(in.Subject),
				Name:    in.Name,
				HP:      in.HP,
				Icon:    in.Icon,
				Reward:  in.Reward,
			}
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func normalizeSubject(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func DefaultSeed() *SeedFile {
	return &SeedFile{
		Questions: []QInput{
			{Subject: "math", Difficulty: 1, Text: "5 + 5 = ?", Options: []string{"10", "11", "12", "55"}, Correct: 0, Explanation: "Basic addition."},
			{Subject: "math", Difficulty: 1, Text: "10 - 3 = ?", Options: []string{"7", "6", "8", "5"}, Correct: 0, Explanation: "Basic subtraction."},
			{Subject: "math", Difficulty: 1, Text: "What shape has 3 sides?", Options: []string{"Square", "Circle", "Triangle", "Box"}, Correct: 2, Explanation: "Triangles have 3 sides."},
			{Subject: "math", Difficulty: 2, Text: "12 x 12 = ?", Options: []string{"120", "144", "100", "124"}, Correct: 1, Explanation: "12 squared is 144."},
			{Subject: "math", Difficulty: 2, Text: "25 / 5 = ?", Options: []string{"4", "5", "6", "10"}, Correct: 1, Explanation: "25 divided by 5 is 5."},
			{Subject: "math", Difficulty: 2, Text: "Perimeter of a 4x4 square?", Options: []string{"8", "12", "16", "20"}, Correct: 2, Explanation: "4+4+4+4 = 16."},
			{Subject: "math", Difficulty: 3, Text: "Solve 2x = 10", Options: []string{"2", "5", "10", "20"}, Correct: 1, Explanation: "Divide by 2."},
			{Subject: "math", Difficulty: 3, Text: "Square root of 81?", Options: []string{"7", "8", "9", "10"}, Correct: 2, Explanation: "9x9=81."},
			{Subject: "math", Difficulty: 3, Text: "Next prime after 7?", Options: []string{"9", "10", "11", "13"}, Correct: 2, Explanation: "11 is the next prime."},
			{Subject: "science", Difficulty: 1, Text: "What do we breathe?", Options: []string{"Oxygen", "Helium", "Iron", "Gold"}, Correct: 0, Explanation: "Humans need oxygen."},
			{Subject: "science", Difficulty: 1, Text: "The Red Planet?", Options: []string{"Mars", "Earth", "Venus", "Sun"}, Correct: 0, Explanation: "Mars is red due to iron oxide."},
			{Subject: "science", Difficulty: 2, Text: "H2O is?", Options: []string{"Salt", "Water", "Air", "Fire"}, Correct: 1, Explanation: "Water molecule."},
			{Subject: "science", Difficulty: 2, Text: "Force that pulls down?", Options: []string{"Gravity", "Magnetism", "Speed", "Light"}, Correct: 0, Explanation: "Gravity attracts mass."},
			{Subject: "history", Difficulty: 1, Text: "First US President?", Options: []string{"Lincoln", "Washington", "Adams", "Bush"}, Correct: 1, Explanation: "George Washington."},
			{Subject: "history", Difficulty: 2, Text: "Year of US Independence?", Options: []string{"1776", "1999", "1800", "1492"}, Correct: 0, Explanation: "July 4, 1776."},
		},
		Bosses: []BossInput{
			{Subject: "math", Name: "Number Golem", HP: 100, Icon: "🗿", Reward: 50},
			{Subject: "science", Name: "Lab Hydra", HP: 120, Icon: "🐉", Reward: 60},
			{Subject: "history", Name: "Time Pharaoh", HP: 90, Icon: "👑", Reward: 45},
		},
	}
}
