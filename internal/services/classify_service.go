package services

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/alimgiray/heartbeat/pkg/logger"
)

// ClassifyService turns one issue unit's records into role events and a
// first-interaction partial. Units have no data dependency on each
// other, so ProcessUnit is safe to call from concurrent workers.
type ClassifyService struct {
	corpus   *CorpusService
	triggers []string
}

func NewClassifyService(corpus *CorpusService, triggers []string) *ClassifyService {
	return &ClassifyService{
		corpus:   corpus,
		triggers: triggers,
	}
}

// ProcessUnit classifies a single unit directory. Malformed records are
// skipped with a warning; a unit missing its primary record produces no
// role events, which is not an error. First interactions come from every
// readable record regardless of how the unit classifies.
func (s *ClassifyService) ProcessUnit(unitDir string) (*models.UnitResult, error) {
	files, err := s.corpus.ListRecordFiles(unitDir)
	if err != nil {
		return nil, err
	}

	result := &models.UnitResult{
		Interactions: make(map[string]*models.FirstInteraction),
	}

	// Read every record once, in enumeration order.
	var records []*models.Record
	var issueRecord, prRecord *models.Record
	for _, name := range files {
		record, err := s.corpus.ReadRecord(unitDir, name)
		if err != nil {
			logger.WithError(err).Warnf("Skipping malformed record %s", filepath.Join(unitDir, name))
			result.Skipped++
			continue
		}
		records = append(records, record)
		switch record.Kind {
		case models.RecordKindIssue:
			if issueRecord == nil {
				issueRecord = record
			}
		case models.RecordKindPullRequest:
			if prRecord == nil {
				prRecord = record
			}
		}
	}

	unit := s.classifyUnit(unitDir, issueRecord, prRecord)
	result.Unit = unit

	if unit.IsPullRequest() {
		s.extractPullRequestRoles(result, prRecord, records)
	} else {
		s.extractIssueRoles(result, issueRecord, records)
	}

	// A pull request and its issue twin describe the same creation event
	// with the same timestamp, and enumeration order between the two is
	// racy. Inserting the PR record first means the twin can never become
	// the stored first interaction.
	if prRecord != nil {
		InsertEarliest(result.Interactions, models.NewFirstInteraction(prRecord))
	}
	for _, record := range records {
		if record == prRecord {
			continue
		}
		InsertEarliest(result.Interactions, models.NewFirstInteraction(record))
	}

	return result, nil
}

// classifyUnit decides whether the unit is a plain issue or a pull
// request, and whether the pull request was merged. The issue record is
// the canonical creation record; a pull_request marker on it makes the
// unit a PR even when the pr-*.json file is missing.
func (s *ClassifyService) classifyUnit(unitDir string, issueRecord, prRecord *models.Record) *models.IssueUnit {
	unit := &models.IssueUnit{
		Number: unitNumber(unitDir, issueRecord, prRecord),
		Dir:    unitDir,
		Kind:   models.UnitKindPlainIssue,
	}

	// The issue record is the canonical creation record; only when it is
	// absent does the pull request record decide on its own.
	if issueRecord != nil {
		if issueRecord.IsPullRequest {
			unit.Kind = models.UnitKindPullRequest
		}
	} else if prRecord != nil {
		unit.Kind = models.UnitKindPullRequest
	}

	if unit.Kind == models.UnitKindPullRequest && prRecord != nil && prRecord.MergedAt != nil {
		unit.Merged = true
		ttm := prRecord.MergedAt.Sub(prRecord.CreatedAt)
		if ttm < 0 {
			// Observed in real data: merged_at before created_at due to
			// clock skew or API inconsistency.
			logger.Warnf("Merge predates creation in %s, clamping duration to zero", prRecord.Path())
			ttm = 0
		}
		unit.TimeToMerge = ttm
	}

	return unit
}

// extractIssueRoles emits the reporter event and a responder event for
// every comment by someone other than the reporter. Without an issue
// record there is no reporter to respond to, so the unit yields nothing.
func (s *ClassifyService) extractIssueRoles(result *models.UnitResult, issueRecord *models.Record, records []*models.Record) {
	if issueRecord == nil {
		logger.Warnf("Unit %s has no issue record, skipping role extraction", result.Unit.Dir)
		return
	}

	reporter := issueRecord.User
	result.Events = append(result.Events,
		models.NewRoleEvent(models.RoleReporter, issueRecord.CreatedAt, reporter, issueRecord))

	for _, record := range records {
		if record.Kind != models.RecordKindComment {
			continue
		}
		if record.User == reporter {
			// Commenting on your own issue is not responding.
			continue
		}
		result.Events = append(result.Events,
			models.NewRoleEvent(models.RoleResponder, record.CreatedAt, record.User, record))
	}
}

// extractPullRequestRoles emits exactly one of submitter or contributor
// for the PR author, merger events, and a reviewer event for every
// comment by someone other than the author.
func (s *ClassifyService) extractPullRequestRoles(result *models.UnitResult, prRecord *models.Record, records []*models.Record) {
	if prRecord == nil {
		logger.Warnf("Unit %s has no pull request record, skipping role extraction", result.Unit.Dir)
		return
	}

	author := prRecord.User
	role := models.RoleSubmitter
	if result.Unit.Merged {
		role = models.RoleContributor
	}
	result.Events = append(result.Events,
		models.NewRoleEvent(role, prRecord.CreatedAt, author, prRecord))

	if result.Unit.Merged {
		// merged_by can be null even for a merged PR, e.g. merges made
		// by a since-deleted account.
		result.Events = append(result.Events,
			models.NewRoleEvent(models.RoleMerger, *prRecord.MergedAt, prRecord.MergedBy, prRecord))
	}

	for _, record := range records {
		if record.Kind != models.RecordKindComment && record.Kind != models.RecordKindPullRequestComment {
			continue
		}

		// A comment commanding a merge bot attributes the merge to the
		// human who issued the command, at the command's time. The bot's
		// own merger event coexists with this one; downstream consumers
		// filter bot accounts by name. We can't tell whether the bot
		// accepted the command, so this over-reports rejected commands.
		if s.isBotCommand(record) {
			result.Events = append(result.Events,
				models.NewRoleEvent(models.RoleMerger, record.CreatedAt, record.User, record))
		}

		if record.User == author {
			// Commenting on your own PR is not reviewing it.
			continue
		}
		result.Events = append(result.Events,
			models.NewRoleEvent(models.RoleReviewer, record.CreatedAt, record.User, record))
	}
}

// isBotCommand reports whether a comment opens with a configured
// merge-bot command prefix. Bots only react to commands at the start of
// a comment body.
func (s *ClassifyService) isBotCommand(record *models.Record) bool {
	if record.BodyText == "" {
		return false
	}
	for _, trigger := range s.triggers {
		if strings.HasPrefix(record.BodyText, trigger) {
			return true
		}
	}
	return false
}

// unitNumber recovers the issue/PR number from the directory name,
// falling back to the records themselves.
func unitNumber(unitDir string, issueRecord, prRecord *models.Record) int {
	name := filepath.Base(unitDir)
	if n, err := strconv.Atoi(strings.TrimPrefix(name, "issue-")); err == nil {
		return n
	}
	if issueRecord != nil && issueRecord.Number != 0 {
		return issueRecord.Number
	}
	if prRecord != nil {
		return prRecord.Number
	}
	return 0
}
