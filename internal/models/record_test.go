package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindFromFilename(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
		kind     RecordKind
		isRecord bool
	}{
		{
			name:     "Issue record",
			filename: "issue-42.json",
			kind:     RecordKindIssue,
			isRecord: true,
		},
		{
			name:     "Comment record",
			filename: "comment-1001.json",
			kind:     RecordKindComment,
			isRecord: true,
		},
		{
			name:     "Pull request record",
			filename: "pr-42.json",
			kind:     RecordKindPullRequest,
			isRecord: true,
		},
		{
			name:     "Pull request comment is not a pull request",
			filename: "pr-comment-42.json",
			kind:     RecordKindPullRequestComment,
			isRecord: true,
		},
		{
			name:     "Output file is not a record",
			filename: "first-interactions.txt",
			isRecord: false,
		},
		{
			name:     "Role output file is not a record",
			filename: "reporters.txt",
			isRecord: false,
		},
		{
			name:     "Prefix without number is not a record",
			filename: "pr-comment-.json",
			isRecord: false,
		},
		{
			name:     "Unrelated file",
			filename: "README.md",
			isRecord: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindFromFilename(tc.filename)
			assert.Equal(t, tc.isRecord, ok)
			if tc.isRecord {
				assert.Equal(t, tc.kind, kind)
			}
		})
	}
}

func TestRecordPath(t *testing.T) {
	record := &Record{
		Kind:      RecordKindIssue,
		User:      "alice",
		CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Dir:       filepath.Join("owner", "repo", "issue-1"),
		File:      "issue-1.json",
	}

	assert.Equal(t, filepath.Join("owner", "repo", "issue-1", "issue-1.json"), record.Path())
}

func TestEventsByRole(t *testing.T) {
	issue := &Record{Dir: "issue-1", File: "issue-1.json"}
	comment := &Record{Dir: "issue-1", File: "comment-2.json"}
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	result := &UnitResult{
		Events: []*RoleEvent{
			NewRoleEvent(RoleReporter, at, "alice", issue),
			NewRoleEvent(RoleResponder, at.Add(time.Hour), "bob", comment),
			NewRoleEvent(RoleResponder, at.Add(2*time.Hour), "carol", comment),
		},
	}

	grouped := result.EventsByRole()
	assert.Len(t, grouped[RoleReporter], 1)
	assert.Len(t, grouped[RoleResponder], 2)
	assert.Empty(t, grouped[RoleMerger])
}
