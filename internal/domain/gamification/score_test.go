package gamification

import "testing"

func TestComputeRankScoreWeights(t *testing.T) {
	// 40% of 100 + 40% of 50 + 20% of (4.0/5 * 100) = 40 + 20 + 16.
	got := ComputeRankScore(100, 50, 4.0)
	if got != 76 {
		t.Fatalf("expected 76, got %v", got)
	}
}

func TestComputeRankScorePerfect(t *testing.T) {
	if got := ComputeRankScore(100, 100, 5.0); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestComputeRankScoreClampsInputs(t *testing.T) {
	if got := ComputeRankScore(150, 120, 9.0); got != 100 {
		t.Fatalf("expected overflow inputs to clamp to 100, got %v", got)
	}
	if got := ComputeRankScore(-10, -5, -1); got != 0 {
		t.Fatalf("expected negative inputs to clamp to 0, got %v", got)
	}
}

func TestRankBadgeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, BadgeBronze},
		{39.9, BadgeBronze},
		{40, BadgeSilver},
		{59.9, BadgeSilver},
		{60, BadgeGold},
		{74.9, BadgeGold},
		{75, BadgePlatinum},
		{89.9, BadgePlatinum},
		{90, BadgeDiamond},
		{100, BadgeDiamond},
	}
	for _, tc := range cases {
		if got := RankBadge(tc.score); got != tc.want {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}
