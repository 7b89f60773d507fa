package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifyService(root string) *ClassifyService {
	return NewClassifyService(NewCorpusService(root), []string{"@bors: r+"})
}

func eventsWithRole(events []*models.RoleEvent, role models.Role) []*models.RoleEvent {
	var matched []*models.RoleEvent
	for _, event := range events {
		if event.Role == role {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestProcessUnitPlainIssue(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-1")
	writeRecord(t, unitDir, "issue-1.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-01T00:00:00Z", "number": 1}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Equal(t, models.UnitKindPlainIssue, result.Unit.Kind)
	assert.Equal(t, 1, result.Unit.Number)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.RoleReporter, result.Events[0].Role)
	assert.Equal(t, "alice", result.Events[0].User)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), result.Events[0].OccurredAt)

	require.Contains(t, result.Interactions, "alice")
	assert.Equal(t, "issue-1.json", result.Interactions["alice"].File)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), result.Interactions["alice"].OccurredAt)
}

func TestProcessUnitResponders(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-2")
	writeRecord(t, unitDir, "issue-2.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-01T00:00:00Z", "number": 2}`)
	writeRecord(t, unitDir, "comment-10.json",
		`{"user": {"login": "bob"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "have you tried turning it off?"}`)
	writeRecord(t, unitDir, "comment-11.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-03T00:00:00Z", "body_text": "yes"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	responders := eventsWithRole(result.Events, models.RoleResponder)
	require.Len(t, responders, 1, "reporter commenting on their own issue is not a responder")
	assert.Equal(t, "bob", responders[0].User)
}

// A unit with a pull request produces exactly one of submitter or
// contributor, decided solely by merged_at.
func TestProcessUnitSubmitterContributor(t *testing.T) {
	testCases := []struct {
		name     string
		prJSON   string
		expected models.Role
		merged   bool
	}{
		{
			name:     "Unmerged PR yields submitter",
			prJSON:   `{"user": {"login": "bob"}, "created_at": "2020-01-01T00:00:00Z", "number": 3, "merged_at": null}`,
			expected: models.RoleSubmitter,
		},
		{
			name:     "Merged PR yields contributor",
			prJSON:   `{"user": {"login": "bob"}, "created_at": "2020-01-01T00:00:00Z", "number": 3, "merged_at": "2020-01-02T00:00:00Z", "merged_by": {"login": "maintainer"}}`,
			expected: models.RoleContributor,
			merged:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			unitDir := filepath.Join(root, "issue-3")
			writeRecord(t, unitDir, "issue-3.json",
				`{"user": {"login": "bob"}, "created_at": "2020-01-01T00:00:00Z", "number": 3, "pull_request": {"url": "u"}}`)
			writeRecord(t, unitDir, "pr-3.json", tc.prJSON)

			result, err := newTestClassifyService(root).ProcessUnit(unitDir)
			require.NoError(t, err)

			assert.Equal(t, models.UnitKindPullRequest, result.Unit.Kind)
			assert.Equal(t, tc.merged, result.Unit.Merged)
			assert.Len(t, eventsWithRole(result.Events, tc.expected), 1)

			other := models.RoleContributor
			if tc.expected == models.RoleContributor {
				other = models.RoleSubmitter
			}
			assert.Empty(t, eventsWithRole(result.Events, other), "a PR is never both submitted and contributed")
			assert.Empty(t, eventsWithRole(result.Events, models.RoleReporter))
		})
	}
}

// The issue twin of a PR shares its creation timestamp; only one first
// interaction may come out of the pair, and it points at the PR record.
func TestProcessUnitCoalescesIssueAndPullRequest(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-4")
	writeRecord(t, unitDir, "issue-4.json",
		`{"user": {"login": "bob"}, "created_at": "2020-03-01T00:00:00Z", "number": 4, "pull_request": {"url": "u"}}`)
	writeRecord(t, unitDir, "pr-4.json",
		`{"user": {"login": "bob"}, "created_at": "2020-03-01T00:00:00Z", "number": 4, "merged_at": null}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	require.Len(t, result.Interactions, 1)
	assert.Equal(t, "pr-4.json", result.Interactions["bob"].File)
}

func TestProcessUnitMergerAttribution(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-5")
	writeRecord(t, unitDir, "issue-5.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 5, "pull_request": {"url": "u"}}`)
	writeRecord(t, unitDir, "pr-5.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 5, "merged_at": "2020-01-03T00:00:00Z", "merged_by": {"login": "ci-bot"}}`)
	writeRecord(t, unitDir, "comment-20.json",
		`{"user": {"login": "dave"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "@bors: r+ looks good"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	mergers := eventsWithRole(result.Events, models.RoleMerger)
	require.Len(t, mergers, 2, "both the bot and the human who commanded it are mergers")

	assert.Equal(t, "ci-bot", mergers[0].User)
	assert.Equal(t, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), mergers[0].OccurredAt, "bot merger is timestamped at merged_at")
	assert.Equal(t, "dave", mergers[1].User)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), mergers[1].OccurredAt, "command merger is timestamped at the comment, not the merge")

	// dave also reviewed, carol did not review her own PR.
	reviewers := eventsWithRole(result.Events, models.RoleReviewer)
	require.Len(t, reviewers, 1)
	assert.Equal(t, "dave", reviewers[0].User)
}

func TestProcessUnitMergedByDeletedAccount(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-6")
	writeRecord(t, unitDir, "pr-6.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 6, "merged_at": "2020-01-02T00:00:00Z", "merged_by": null}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	mergers := eventsWithRole(result.Events, models.RoleMerger)
	require.Len(t, mergers, 1)
	assert.Equal(t, models.GhostUser, mergers[0].User)
}

func TestProcessUnitReviewerSelfExclusion(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-7")
	writeRecord(t, unitDir, "pr-7.json",
		`{"user": {"login": "bob"}, "created_at": "2020-01-01T00:00:00Z", "number": 7, "merged_at": null}`)
	writeRecord(t, unitDir, "pr-comment-30.json",
		`{"user": {"login": "bob"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "rebased"}`)
	writeRecord(t, unitDir, "comment-31.json",
		`{"user": {"login": "eve"}, "created_at": "2020-01-03T00:00:00Z", "body_text": "nit: typo"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	reviewers := eventsWithRole(result.Events, models.RoleReviewer)
	require.Len(t, reviewers, 1)
	assert.Equal(t, "eve", reviewers[0].User)
}

// A bot command on an unmerged PR still counts as a merger event: the
// engine cannot tell whether the bot accepted the command.
func TestProcessUnitBotCommandWithoutMerge(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-8")
	writeRecord(t, unitDir, "pr-8.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 8, "merged_at": null}`)
	writeRecord(t, unitDir, "comment-40.json",
		`{"user": {"login": "dave"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "@bors: r+"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	mergers := eventsWithRole(result.Events, models.RoleMerger)
	require.Len(t, mergers, 1)
	assert.Equal(t, "dave", mergers[0].User)
}

func TestProcessUnitTriggerMustOpenComment(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-9")
	writeRecord(t, unitDir, "pr-9.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 9, "merged_at": null}`)
	writeRecord(t, unitDir, "comment-41.json",
		`{"user": {"login": "dave"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "please @bors: r+ this"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Empty(t, eventsWithRole(result.Events, models.RoleMerger))
}

func TestProcessUnitMissingPrimaryRecord(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-10")
	writeRecord(t, unitDir, "comment-50.json",
		`{"user": {"login": "erin"}, "created_at": "2020-01-02T00:00:00Z", "body_text": "anyone home?"}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Empty(t, result.Events, "absence of the primary record produces no role events")
	assert.Contains(t, result.Interactions, "erin", "first interactions still come from the remaining records")
}

func TestProcessUnitMalformedRecordIsSkipped(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-11")
	writeRecord(t, unitDir, "issue-11.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-01T00:00:00Z", "number": 11}`)
	writeRecord(t, unitDir, "comment-60.json", `{broken`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err, "one corrupt record must not abort the unit")

	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.RoleReporter, result.Events[0].Role)
}

func TestProcessUnitInvertedMergeTime(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-12")
	writeRecord(t, unitDir, "pr-12.json",
		`{"user": {"login": "carol"}, "created_at": "2020-02-01T00:00:00Z", "number": 12, "merged_at": "2020-01-01T00:00:00Z", "merged_by": {"login": "maintainer"}}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.True(t, result.Unit.Merged)
	assert.Equal(t, time.Duration(0), result.Unit.TimeToMerge, "merge predating creation clamps to zero")
}

func TestProcessUnitMarkerWithoutPRRecord(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-13")
	writeRecord(t, unitDir, "issue-13.json",
		`{"user": {"login": "bob"}, "created_at": "2020-01-01T00:00:00Z", "number": 13, "pull_request": {"url": "u"}}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Equal(t, models.UnitKindPullRequest, result.Unit.Kind)
	assert.Empty(t, result.Events, "no pr record means no submitter or reviewer events")
	assert.Contains(t, result.Interactions, "bob")
}

// The issue record is canonical: without its pull_request marker the
// unit stays a plain issue even if a stray pr file is present.
func TestProcessUnitIssueRecordIsCanonical(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-15")
	writeRecord(t, unitDir, "issue-15.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-01T00:00:00Z", "number": 15}`)
	writeRecord(t, unitDir, "pr-15.json",
		`{"user": {"login": "alice"}, "created_at": "2020-01-01T00:00:00Z", "number": 15, "merged_at": null}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Equal(t, models.UnitKindPlainIssue, result.Unit.Kind)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.RoleReporter, result.Events[0].Role)
}

func TestProcessUnitTimeToMerge(t *testing.T) {
	root := t.TempDir()
	unitDir := filepath.Join(root, "issue-14")
	writeRecord(t, unitDir, "pr-14.json",
		`{"user": {"login": "carol"}, "created_at": "2020-01-01T00:00:00Z", "number": 14, "merged_at": "2020-01-02T06:00:00Z", "merged_by": {"login": "maintainer"}}`)

	result, err := newTestClassifyService(root).ProcessUnit(unitDir)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Hour, result.Unit.TimeToMerge)
}
