package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Progression metric names
const (
	MetricNameLevelUps          = "player_level_ups_total"
	MetricNameBuildingsUnlocked = "buildings_unlocked_total"
	MetricNameAreasUnlocked     = "areas_unlocked_total"
)

// Construction metric names
const (
	MetricNameProjectsRegistered = "construction_projects_registered_total"
	MetricNameProjectsCompleted  = "construction_projects_completed_total"
	MetricNameSkipQuestsAdded    = "skip_quests_added_total"
	MetricNameQuestsCompleted    = "skip_quests_completed_total"
	MetricNameQuestsDeleted      = "skip_quests_deleted_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Progression metric help text
const (
	HelpTextLevelUps          = "Total number of player level-ups"
	HelpTextBuildingsUnlocked = "Total number of buildings unlocked"
	HelpTextAreasUnlocked     = "Total number of areas unlocked"
)

// Construction metric help text
const (
	HelpTextProjectsRegistered = "Total number of construction projects registered"
	HelpTextProjectsCompleted  = "Total number of construction projects completed"
	HelpTextSkipQuestsAdded    = "Total number of skip quests added"
	HelpTextQuestsCompleted    = "Total number of skip quests completed"
	HelpTextQuestsDeleted      = "Total number of skip quests deleted"
)

// Metric label names
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
)
