package domain

import "time"

// Identity-provider group names.
const (
	GroupParents  = "Parents"
	GroupChildren = "Children"
)

// Principal is the verified identity of a caller.
type Principal struct {
	SubjectID string
	Groups    []string
	Email     string
	ExpiresAt time.Time
}
