package gamificationhandler

import (
	"strings"
	"testing"

	"talenthub/internal/domain/gamification"
)

func TestPublishedBodyFormatsRank(t *testing.T) {
	pos := 3
	body := publishedBody(gamification.Snapshot{RankScore: 91.0, RankPosition: &pos})
	want := "You ranked #3 with a score of 91.0 (Diamond)."
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
	if strings.Contains(body, "0x") {
		t.Fatalf("body leaked a pointer: %q", body)
	}
}

func TestPublishedBodySkipsUnranked(t *testing.T) {
	if body := publishedBody(gamification.Snapshot{RankScore: 55}); body != "" {
		t.Fatalf("expected empty body for unranked snapshot, got %q", body)
	}
}
