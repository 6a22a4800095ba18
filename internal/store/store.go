// Package store provides the durable, synchronous, string-keyed persistence
// layer the progression core writes its state blobs to.
package store

// KV is a synchronous string-keyed store. Implementations must make Set durable
// before returning; Flush forces any buffered writes out.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Has(key string) bool
	Delete(key string)
	Flush()
}

// Well-known keys the progression core persists under.
const (
	KeyLevelState      = "player:level"
	KeyBuildingUnlocks = "unlock:buildings"
	KeyRegionState     = "region:state"
	KeyProjects        = "construction:projects"
)
