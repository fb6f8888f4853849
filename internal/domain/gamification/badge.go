package gamification

const (
	BadgeDiamond  = "Diamond"
	BadgePlatinum = "Platinum"
	BadgeGold     = "Gold"
	BadgeSilver   = "Silver"
	BadgeBronze   = "Bronze"
)

// RankBadge maps a rank score to its tier. Total over all inputs.
func RankBadge(score float64) string {
	switch {
	case score >= 90:
		return BadgeDiamond
	case score >= 75:
		return BadgePlatinum
	case score >= 60:
		return BadgeGold
	case score >= 40:
		return BadgeSilver
	default:
		return BadgeBronze
	}
}
