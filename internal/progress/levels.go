package progress

// levelThresholds[i] is the cumulative XP required to hold level i+1.
var levelThresholds = []int{0, 30, 75, 150, 250, 400, 600, 850, 1150, 1500, 2000, 2750, 3750, 5000, 6500}

// MaxLevel is the highest reachable level.
var MaxLevel = len(levelThresholds)

// LevelForXP returns the largest level whose threshold the given XP meets.
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// XPToNextLevel returns the XP still needed to reach the next level, or 0 at the cap.
func XPToNextLevel(xp int) int {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 0
	}
	return levelThresholds[level] - xp
}
