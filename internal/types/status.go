package types

// Status is a type for the lifecycle status of a persisted resource.
// This is used to track the lifecycle of a resource and to determine if it should be included in queries
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
