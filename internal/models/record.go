package models

import (
	"path/filepath"
	"regexp"
	"time"
)

// GhostUser is the sentinel identity for deleted GitHub accounts.
// GitHub removes user info from records when an account is deleted, so
// every deleted account collapses into this single identity.
const GhostUser = "ghost"

// RecordKind represents the type of a scraped JSON record
type RecordKind string

const (
	RecordKindIssue              RecordKind = "issue"
	RecordKindComment            RecordKind = "comment"
	RecordKindPullRequest        RecordKind = "pull-request"
	RecordKindPullRequestComment RecordKind = "pull-request-comment"
)

// The scraper distinguishes record kinds by filename prefix. The pull
// request patterns anchor on a digit so that pr-comment-*.json never
// matches the pr-*.json pattern.
var (
	issuePattern     = regexp.MustCompile(`^issue-[0-9]+`)
	commentPattern   = regexp.MustCompile(`^comment-[0-9]+`)
	prPattern        = regexp.MustCompile(`^pr-[0-9]+`)
	prCommentPattern = regexp.MustCompile(`^pr-comment-[0-9]+`)
)

// KindFromFilename determines the record kind from a scraped file name.
// The second return value is false for files that are not records
// (output files, dotfiles, etc.).
func KindFromFilename(name string) (RecordKind, bool) {
	switch {
	case issuePattern.MatchString(name):
		return RecordKindIssue, true
	case prCommentPattern.MatchString(name):
		return RecordKindPullRequestComment, true
	case prPattern.MatchString(name):
		return RecordKindPullRequest, true
	case commentPattern.MatchString(name):
		return RecordKindComment, true
	default:
		return "", false
	}
}

// Record represents one scraped JSON record, normalized into a closed
// tag set so downstream passes never re-derive the kind from file names.
type Record struct {
	Kind      RecordKind
	User      string // GhostUser when the account was deleted
	CreatedAt time.Time
	Dir       string // unit directory the record was read from
	File      string // file name inside Dir
	Number    int    // issue/PR number, 0 when the record carries none

	// Issue records only: the issue is also a pull request.
	IsPullRequest bool

	// Pull request records only.
	MergedAt *time.Time
	MergedBy string // GhostUser when merged_by is null, "" when not merged

	// Comment kinds only: textual body, used for bot-command detection.
	BodyText string
}

// Path returns the record's file path as it appears in the outputs.
func (r *Record) Path() string {
	return filepath.Join(r.Dir, r.File)
}
