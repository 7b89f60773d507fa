package models

import (
	"time"
)

// UnitKind represents what an issue unit turned out to be
type UnitKind string

const (
	// UnitKindPlainIssue is an issue that is not a pull request.
	UnitKindPlainIssue UnitKind = "issue"
	// UnitKindPullRequest is an issue that is also a pull request.
	UnitKindPullRequest UnitKind = "pull_request"
)

// IssueUnit represents the classification of one issue directory:
// the set of records sharing a single issue/PR number.
type IssueUnit struct {
	Number      int           `json:"number"`
	Dir         string        `json:"dir"`
	Kind        UnitKind      `json:"kind"`
	Merged      bool          `json:"merged"`
	TimeToMerge time.Duration `json:"time_to_merge"` // zero unless merged; clamped at zero
}

// IsPullRequest checks whether the unit was classified as a pull request
func (u *IssueUnit) IsPullRequest() bool {
	return u.Kind == UnitKindPullRequest
}

// UnitResult holds everything derived from a single unit: its
// classification, the role events it produced, and a per-unit partial
// of the first-interaction map, keyed by username.
type UnitResult struct {
	Unit         *IssueUnit
	Events       []*RoleEvent
	Interactions map[string]*FirstInteraction
	Skipped      int // records dropped as malformed
}

// EventsByRole groups the unit's events by role tag
func (r *UnitResult) EventsByRole() map[Role][]*RoleEvent {
	grouped := make(map[Role][]*RoleEvent)
	for _, event := range r.Events {
		grouped[event.Role] = append(grouped[event.Role], event)
	}
	return grouped
}
