package config

// Level progression defaults
const (
	// DefaultXPBase is the XP cost of going from level 1 to level 2
	DefaultXPBase = 50

	// DefaultXPMultiplier is the per-level growth factor of the XP curve
	DefaultXPMultiplier = 1.15
)

// Unlock assignment defaults
const (
	// DefaultMaxUnlockLevel is the highest level any item can unlock at
	DefaultMaxUnlockLevel = 40

	// DefaultMinBuildMinutes is the construction time of the earliest item
	DefaultMinBuildMinutes = 1.0

	// DefaultMaxBuildMinutes is the construction time of the latest item
	DefaultMaxBuildMinutes = 360.0

	// DefaultFallbackBuildMinutes is used when an item has no assigned level at all
	DefaultFallbackBuildMinutes = 60.0
)

// Region unlock defaults
const (
	// DefaultRegionBuildingThreshold is how many buildings the legacy manual
	// path requires before it unlocks an area
	DefaultRegionBuildingThreshold = 10
)

// Scheduler defaults
const (
	// DefaultTickIntervalSeconds is how often the construction tick runs
	DefaultTickIntervalSeconds = 1
)

// Event system defaults
const (
	DefaultEventMaxRetries   = 3
	DefaultEventRetryDelayMS = 500
)

// Store backends
const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)
