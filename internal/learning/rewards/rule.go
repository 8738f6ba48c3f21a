// Package rewards converts completion events into experience, points and level.
package rewards

import (
	"math"
	"strings"
)

// Snapshot is the gamification state of one user. Apply never mutates its input.
type Snapshot struct {
	Experience  int `json:"experience"`
	TotalPoints int `json:"total_points"`
	Level       int `json:"level"`
}

// Rule holds the tunable parts of the reward formula.
type Rule struct {
	// CourseXP maps course level to experience granted on completion.
	CourseXP map[string]int `yaml:"course_xp"`
	// DefaultCourseXP applies to unrecognised course levels.
	DefaultCourseXP int `yaml:"default_course_xp"`
	// PointsRatio converts gained experience to points, floored.
	PointsRatio float64 `yaml:"points_ratio"`
	// XPPerLevel is the experience width of one level.
	XPPerLevel int `yaml:"xp_per_level"`
}

func DefaultRule() Rule {
	return Rule{
		CourseXP: map[string]int{
			"beginner":     50,
			"intermediate": 100,
			"advanced":     150,
		},
		DefaultCourseXP: 50,
		PointsRatio:     0.5,
		XPPerLevel:      100,
	}
}

// LevelFor is 1 + floor(experience / XPPerLevel).
func (r Rule) LevelFor(experience int) int {
	if experience <= 0 || r.XPPerLevel <= 0 {
		return 1
	}
	return 1 + experience/r.XPPerLevel
}

// NextLevelAt is the experience at which the level after s.Level starts.
func (r Rule) NextLevelAt(s Snapshot) int {
	lvl := s.Level
	if lvl < 1 {
		lvl = 1
	}
	return lvl * r.XPPerLevel
}

// Apply adds xp to s. Level never decreases.
func (r Rule) Apply(s Snapshot, xp int) Snapshot {
	if xp < 0 {
		xp = 0
	}
	out := Snapshot{
		Experience:  s.Experience + xp,
		TotalPoints: s.TotalPoints + int(math.Floor(float64(xp)*r.PointsRatio)),
		Level:       s.Level,
	}
	if lvl := r.LevelFor(out.Experience); lvl > out.Level {
		out.Level = lvl
	}
	if out.Level < 1 {
		out.Level = 1
	}
	return out
}

// AddPoints grants points without experience, as awards do.
func (r Rule) AddPoints(s Snapshot, points int) Snapshot {
	out := s
	if points > 0 {
		out.TotalPoints += points
	}
	return out
}

func (r Rule) CourseCompletionXP(courseLevel string) int {
	if xp, ok := r.CourseXP[strings.ToLower(strings.TrimSpace(courseLevel))]; ok {
		return xp
	}
	return r.DefaultCourseXP
}

// QuizXP is floor(passingScore * score / 100) for a passed attempt, else 0.
func (r Rule) QuizXP(passingScore, score float64, passed bool) int {
	if !passed {
		return 0
	}
	xp := int(math.Floor(passingScore * (score / 100)))
	if xp < 0 {
		return 0
	}
	return xp
}
