package rewards

import "testing"

func TestApplyStackedRewards(t *testing.T) {
	r := DefaultRule()
	start := Snapshot{Experience: 0, TotalPoints: 0, Level: 1}

	got := r.Apply(start, 250)
	if got.Experience != 250 || got.TotalPoints != 125 || got.Level != 3 {
		t.Fatalf("Apply(250): got %+v", got)
	}
	if start.Experience != 0 || start.TotalPoints != 0 || start.Level != 1 {
		t.Fatalf("Apply mutated input: %+v", start)
	}

	stacked := r.Apply(r.Apply(r.Apply(start, 100), 100), 50)
	if stacked != got {
		t.Fatalf("stacked rewards: want %+v got %+v", got, stacked)
	}
}

func TestApplyFloorsPoints(t *testing.T) {
	r := DefaultRule()
	got := r.Apply(Snapshot{Level: 1}, 45)
	if got.TotalPoints != 22 {
		t.Fatalf("points: want=22 got=%d", got.TotalPoints)
	}
	if got.Level != 1 {
		t.Fatalf("level: want=1 got=%d", got.Level)
	}
}

func TestApplyNeverLowersLevel(t *testing.T) {
	r := DefaultRule()
	got := r.Apply(Snapshot{Experience: 10, Level: 7}, 20)
	if got.Level != 7 {
		t.Fatalf("level dropped: %+v", got)
	}
}

func TestApplyIgnoresNegativeXP(t *testing.T) {
	r := DefaultRule()
	in := Snapshot{Experience: 120, TotalPoints: 60, Level: 2}
	if got := r.Apply(in, -50); got != in {
		t.Fatalf("negative xp changed snapshot: %+v", got)
	}
}

func TestCourseCompletionXP(t *testing.T) {
	r := DefaultRule()
	cases := map[string]int{
		"beginner":     50,
		"intermediate": 100,
		"advanced":     150,
		"Advanced ":    150,
		"expert":       50,
		"":             50,
	}
	for level, want := range cases {
		if got := r.CourseCompletionXP(level); got != want {
			t.Fatalf("CourseCompletionXP(%q): want=%d got=%d", level, want, got)
		}
	}
}

func TestQuizXP(t *testing.T) {
	r := DefaultRule()
	cases := []struct {
		name    string
		passing float64
		score   float64
		passed  bool
		want    int
	}{
		{"passed full", 70, 100, true, 70},
		{"passed partial", 70, 85, true, 59},
		{"failed", 70, 50, false, 0},
		{"passed flag wins", 80, 10, true, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.QuizXP(tc.passing, tc.score, tc.passed); got != tc.want {
				t.Fatalf("QuizXP: want=%d got=%d", tc.want, got)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	r := DefaultRule()
	for exp, want := range map[int]int{0: 1, 99: 1, 100: 2, 250: 3, 999: 10} {
		if got := r.LevelFor(exp); got != want {
			t.Fatalf("LevelFor(%d): want=%d got=%d", exp, want, got)
		}
	}
	if got := r.NextLevelAt(Snapshot{Level: 3}); got != 300 {
		t.Fatalf("NextLevelAt: want=300 got=%d", got)
	}
}

func TestAddPoints(t *testing.T) {
	r := DefaultRule()
	got := r.AddPoints(Snapshot{Experience: 5, TotalPoints: 10, Level: 1}, 25)
	if got.TotalPoints != 35 || got.Experience != 5 {
		t.Fatalf("AddPoints: %+v", got)
	}
}
