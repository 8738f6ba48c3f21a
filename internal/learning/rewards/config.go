package rewards

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRule reads a YAML rule file and fills unset fields from DefaultRule.
// An empty path returns the defaults.
func LoadRule(path string) (Rule, error) {
	rule := DefaultRule()
	if path == "" {
		return rule, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rule{}, fmt.Errorf("read reward rule: %w", err)
	}
	return ParseRule(raw)
}

func ParseRule(raw []byte) (Rule, error) {
	var override Rule
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Rule{}, fmt.Errorf("parse reward rule: %w", err)
	}
	rule := DefaultRule()
	for level, xp := range override.CourseXP {
		if xp < 0 {
			return Rule{}, fmt.Errorf("course_xp[%s] must be >= 0", level)
		}
		rule.CourseXP[level] = xp
	}
	if override.DefaultCourseXP > 0 {
		rule.DefaultCourseXP = override.DefaultCourseXP
	}
	if override.PointsRatio < 0 {
		return Rule{}, fmt.Errorf("points_ratio must be >= 0")
	}
	if override.PointsRatio > 0 {
		rule.PointsRatio = override.PointsRatio
	}
	if override.XPPerLevel < 0 {
		return Rule{}, fmt.Errorf("xp_per_level must be >= 0")
	}
	if override.XPPerLevel > 0 {
		rule.XPPerLevel = override.XPPerLevel
	}
	return rule, nil
}
