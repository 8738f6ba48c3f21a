package rewards

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRuleOverrides(t *testing.T) {
	rule, err := ParseRule([]byte(`
course_xp:
  advanced: 200
  expert: 300
points_ratio: 0.25
`))
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	if rule.CourseCompletionXP("advanced") != 200 || rule.CourseCompletionXP("expert") != 300 {
		t.Fatalf("course xp override not applied: %+v", rule.CourseXP)
	}
	if rule.CourseCompletionXP("beginner") != 50 {
		t.Fatalf("default course xp lost: %+v", rule.CourseXP)
	}
	if rule.PointsRatio != 0.25 || rule.XPPerLevel != 100 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}

func TestParseRuleRejectsNegative(t *testing.T) {
	if _, err := ParseRule([]byte("points_ratio: -1\n")); err == nil {
		t.Fatalf("expected error for negative points_ratio")
	}
	if _, err := ParseRule([]byte("course_xp:\n  beginner: -5\n")); err == nil {
		t.Fatalf("expected error for negative course xp")
	}
}

func TestLoadRule(t *testing.T) {
	rule, err := LoadRule("")
	if err != nil {
		t.Fatalf("LoadRule empty: %v", err)
	}
	if rule.XPPerLevel != 100 {
		t.Fatalf("defaults: %+v", rule)
	}

	path := filepath.Join(t.TempDir(), "rewards.yaml")
	if err := os.WriteFile(path, []byte("xp_per_level: 200\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rule, err = LoadRule(path)
	if err != nil {
		t.Fatalf("LoadRule: %v", err)
	}
	if rule.LevelFor(250) != 2 {
		t.Fatalf("xp_per_level override: level=%d", rule.LevelFor(250))
	}

	if _, err := LoadRule(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
