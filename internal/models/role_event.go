package models

import (
	"time"
)

// Role represents the social role a user played in one interaction
type Role string

const (
	// RoleReporter is a user who opened an issue (not a pull request).
	RoleReporter Role = "reporter"
	// RoleResponder is a user who commented on an issue they didn't open.
	RoleResponder Role = "responder"
	// RoleSubmitter is a user who opened a pull request that was not merged.
	RoleSubmitter Role = "submitter"
	// RoleContributor is a user who opened a pull request that was merged.
	RoleContributor Role = "contributor"
	// RoleReviewer is a user who commented on a pull request they didn't open.
	RoleReviewer Role = "reviewer"
	// RoleMerger is a user (or bot) who merged a pull request, or a user
	// who commanded a merge bot to do so.
	RoleMerger Role = "merger"
)

// Roles lists every role in output-file order.
var Roles = []Role{
	RoleReporter,
	RoleResponder,
	RoleSubmitter,
	RoleContributor,
	RoleReviewer,
	RoleMerger,
}

// RoleEvent represents one classified interaction: who did what, when,
// and which scraped record it was derived from
type RoleEvent struct {
	Role       Role      `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
	User       string    `json:"user"`
	SourcePath string    `json:"source_path"`
}

// NewRoleEvent creates a role event from a record
func NewRoleEvent(role Role, at time.Time, user string, source *Record) *RoleEvent {
	return &RoleEvent{
		Role:       role,
		OccurredAt: at,
		User:       user,
		SourcePath: source.Path(),
	}
}
