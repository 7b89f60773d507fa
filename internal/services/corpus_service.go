package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/google/go-github/v57/github"
)

// CorpusService reads the scraped corpus: a tree of
// <root>/<owner>/<repo>/issue-<id>/ directories, each holding the JSON
// records of one issue or pull request as returned by the GitHub API.
type CorpusService struct {
	root string
}

func NewCorpusService(root string) *CorpusService {
	return &CorpusService{root: root}
}

// The records on disk are raw GitHub API payloads, so they parse with
// the API client's own types. The scraper requested the full media type,
// which adds a body_text field the client types don't carry.

type issueDoc struct {
	github.Issue
	BodyText *string `json:"body_text,omitempty"`
}

type commentDoc struct {
	github.IssueComment
	BodyText *string `json:"body_text,omitempty"`
}

type prDoc struct {
	github.PullRequest
	BodyText *string `json:"body_text,omitempty"`
}

type prCommentDoc struct {
	github.PullRequestComment
	BodyText *string `json:"body_text,omitempty"`
}

// RepoPath returns the corpus directory of one repository
func (s *CorpusService) RepoPath(owner, repo string) string {
	return filepath.Join(s.root, owner, repo)
}

// ListUnitDirs returns the issue unit directories of a repository.
// A missing repository directory is fatal: no partial output is
// meaningful without a corpus.
func (s *CorpusService) ListUnitDirs(owner, repo string) ([]string, error) {
	repoPath := s.RepoPath(owner, repo)
	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus at %s: %w", repoPath, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "issue-") {
			continue
		}
		dirs = append(dirs, filepath.Join(repoPath, entry.Name()))
	}
	return dirs, nil
}

// ListRecordFiles returns the record file names inside one unit
// directory, in enumeration order. Files that don't match a record
// naming pattern (output files, dotfiles) are skipped.
func (s *CorpusService) ListRecordFiles(unitDir string) ([]string, error) {
	entries, err := os.ReadDir(unitDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %s: %w", unitDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := models.KindFromFilename(entry.Name()); ok {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// ReadRecord loads one record file and normalizes it into the tagged
// Record form. A null user means the account was deleted; those are
// folded into the ghost identity. A record without a created_at
// timestamp is malformed.
func (s *CorpusService) ReadRecord(unitDir, name string) (*models.Record, error) {
	kind, ok := models.KindFromFilename(name)
	if !ok {
		return nil, fmt.Errorf("%s is not a record file", name)
	}

	path := filepath.Join(unitDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	record := &models.Record{
		Kind: kind,
		Dir:  unitDir,
		File: name,
	}

	switch kind {
	case models.RecordKindIssue:
		var doc issueDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		record.User = loginOrGhost(doc.User)
		if doc.CreatedAt == nil {
			return nil, fmt.Errorf("record %s has no created_at", path)
		}
		record.CreatedAt = doc.CreatedAt.Time.UTC()
		record.Number = doc.GetNumber()
		record.IsPullRequest = doc.PullRequestLinks != nil

	case models.RecordKindPullRequest:
		var doc prDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		record.User = loginOrGhost(doc.User)
		if doc.CreatedAt == nil {
			return nil, fmt.Errorf("record %s has no created_at", path)
		}
		record.CreatedAt = doc.CreatedAt.Time.UTC()
		record.Number = doc.GetNumber()
		if doc.MergedAt != nil {
			mergedAt := doc.MergedAt.Time.UTC()
			record.MergedAt = &mergedAt
			record.MergedBy = loginOrGhost(doc.MergedBy)
		}

	case models.RecordKindComment:
		var doc commentDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		record.User = loginOrGhost(doc.User)
		if doc.CreatedAt == nil {
			return nil, fmt.Errorf("record %s has no created_at", path)
		}
		record.CreatedAt = doc.CreatedAt.Time.UTC()
		record.BodyText = bodyText(doc.BodyText, doc.Body)

	case models.RecordKindPullRequestComment:
		var doc prCommentDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		record.User = loginOrGhost(doc.User)
		if doc.CreatedAt == nil {
			return nil, fmt.Errorf("record %s has no created_at", path)
		}
		record.CreatedAt = doc.CreatedAt.Time.UTC()
		record.BodyText = bodyText(doc.BodyText, doc.Body)
	}

	return record, nil
}

// loginOrGhost normalizes a possibly-deleted account to a username
func loginOrGhost(user *github.User) string {
	if user == nil || user.Login == nil {
		return models.GhostUser
	}
	return *user.Login
}

// bodyText prefers the scraped body_text field, falling back to body
func bodyText(text *string, body *string) string {
	if text != nil {
		return *text
	}
	if body != nil {
		return *body
	}
	return ""
}
