package main

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// picker draws uniformly from a pool. The seeded source is shared between
// requests so it is guarded by a mutex.
type picker struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newPicker(seed *int64) *picker {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &picker{r: rand.New(rand.NewSource(s))}
}

func (p *picker) Intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Intn(n)
}

func pickQuestion(p *picker, pool []Question) *Question {
	if len(pool) == 0 {
		return nil
	}
	q := pool[p.Intn(len(pool))]
	return &q
}

func pickBoss(p *picker, pool []Boss) *Boss {
	if len(pool) == 0 {
		return nil
	}
	b := pool[p.Intn(len(pool))]
	return &b
}

// usernameFromEmail takes the local part of an email-like string as
// written. Case is kept, so Kid1 and kid1 are different users.
func usernameFromEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 {
		return "", false
	}
	return email[:at], true
}

func accuracy(correct, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func summarize(bySubject map[string]SubjectStats) StudentStats {
	st := StudentStats{BySubject: make(map[string]SubjectStats, len(bySubject))}
	for subject, s := range bySubject {
		s.Accuracy = accuracy(s.Correct, s.Total)
		st.BySubject[subject] = s
		st.Total += s.Total
		st.Correct += s.Correct
	}
	st.Accuracy = accuracy(st.Correct, st.Total)
	return st
}

// --- Achievements ---

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	earned      func(p *Profile) bool
}

// achievements is evaluated in this order after every score update.
var achievements = []Achievement{
	{ID: "first_spark", Name: "First Spark", Description: "Earn your first points", Icon: "✨",
		earned: func(p *Profile) bool { return p.SparkEnergy > 100 }},
	{ID: "power_player", Name: "Power Player", Description: "Reach 500 spark energy", Icon: "⚡",
		earned: func(p *Profile) bool { return p.SparkEnergy >= 500 }},
	{ID: "energy_master", Name: "Energy Master", Description: "Reach 1000 spark energy", Icon: "🔋",
		earned: func(p *Profile) bool { return p.SparkEnergy >= 1000 }},
	{ID: "collector", Name: "Collector", Description: "Own 3 shop items", Icon: "🎒",
		earned: func(p *Profile) bool { return len(p.Inventory) >= 3 }},
}

// awardAchievements appends every achievement p now satisfies but does not
// hold yet, and returns the new ones in evaluation order.
func awardAchievements(p *Profile) []Achievement {
	var fresh []Achievement
	for _, a := range achievements {
		if p.HasAchievement(a.ID) || !a.earned(p) {
			continue
		}
		p.Achievements = append(p.Achievements, a.ID)
		fresh = append(fresh, a)
	}
	return fresh
}

// --- Missions ---

type Mission struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	Goal        int    `json:"goal"`
	Reward      int    `json:"reward"`
}

var missions = []Mission{
	{ID: "m_math_5", Title: "Number Cruncher", Description: "Answer 5 math questions correctly", Subject: "math", Goal: 5, Reward: 25},
	{ID: "m_science_5", Title: "Lab Assistant", Description: "Answer 5 science questions correctly", Subject: "science", Goal: 5, Reward: 25},
	{ID: "m_history_3", Title: "Time Traveler", Description: "Answer 3 history questions correctly", Subject: "history", Goal: 3, Reward: 20},
	{ID: "m_boss_1", Title: "Boss Hunter", Description: "Defeat any boss", Subject: "any", Goal: 1, Reward: 50},
}
