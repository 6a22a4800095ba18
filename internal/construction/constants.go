package construction

// Difficulty tier thresholds: remaining build time in minutes maps to the tier
// skip quests are drawn from.
const (
	ExpertTierMinutes = 270.0
	HardTierMinutes   = 180.0
	MediumTierMinutes = 90.0
)

// FillerQuestFormat is used when an area's quest pool is exhausted. The counter
// keeps filler texts unique within a project's master list.
const FillerQuestFormat = "Lend a hand around the %s site (#%d)"

// SecondsPerMinute converts catalog durations (minutes) to scheduler durations
// (seconds).
const SecondsPerMinute = 60.0
