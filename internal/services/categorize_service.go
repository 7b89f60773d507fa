package services

import (
	"context"
	"sort"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/alimgiray/heartbeat/internal/repositories"
	"github.com/alimgiray/heartbeat/pkg/logger"
	"github.com/google/uuid"
)

// UnitRunner classifies a list of unit directories, possibly in
// parallel. The worker pool satisfies this.
type UnitRunner interface {
	Run(ctx context.Context, unitDirs []string) []*models.UnitResult
}

// RunSummary describes one finished categorize run
type RunSummary struct {
	RunID          string
	Units          int
	Users          int
	SkippedRecords int
	EventCounts    map[models.Role]int
	OutputDir      string
}

// CategorizeService drives one full pass over a repository's corpus:
// enumerate units, classify them, reduce first interactions, persist
// the results, and write the output files.
type CategorizeService struct {
	corpusService        *CorpusService
	exportService        *ExportService
	roleEventRepo        *repositories.RoleEventRepository
	firstInteractionRepo *repositories.FirstInteractionRepository
	issueUnitRepo        *repositories.IssueUnitRepository
	outputDir            string
}

// NewCategorizeService creates a new categorize service. Repositories
// may be nil, in which case the run is not archived to the database and
// only the output files are written.
func NewCategorizeService(
	corpusService *CorpusService,
	exportService *ExportService,
	roleEventRepo *repositories.RoleEventRepository,
	firstInteractionRepo *repositories.FirstInteractionRepository,
	issueUnitRepo *repositories.IssueUnitRepository,
	outputDir string,
) *CategorizeService {
	return &CategorizeService{
		corpusService:        corpusService,
		exportService:        exportService,
		roleEventRepo:        roleEventRepo,
		firstInteractionRepo: firstInteractionRepo,
		issueUnitRepo:        issueUnitRepo,
		outputDir:            outputDir,
	}
}

// Run categorizes one repository's corpus end to end
func (s *CategorizeService) Run(ctx context.Context, owner, repo string, runner UnitRunner) (*RunSummary, error) {
	unitDirs, err := s.corpusService.ListUnitDirs(owner, repo)
	if err != nil {
		// No corpus means no meaningful partial output.
		return nil, err
	}

	results := runner.Run(ctx, unitDirs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Workers report in completion order. Sorting by unit directory
	// restores enumeration order so repeated runs produce identical
	// output files.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Unit.Dir < results[j].Unit.Dir
	})

	firstInteractions := NewFirstInteractionService()
	events := make(map[models.Role][]*models.RoleEvent)
	units := make([]*models.IssueUnit, 0, len(results))
	skipped := 0
	for _, result := range results {
		for _, event := range result.Events {
			events[event.Role] = append(events[event.Role], event)
		}
		firstInteractions.MergePartial(result.Interactions)
		units = append(units, result.Unit)
		skipped += result.Skipped
	}
	interactions := firstInteractions.Entries()

	runID := uuid.New().String()
	if err := s.persist(runID, events, interactions, units); err != nil {
		return nil, err
	}

	outDir := s.outputDir
	if outDir == "" {
		outDir = s.corpusService.RepoPath(owner, repo)
	}
	if err := s.exportService.Export(outDir, events, interactions); err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:          runID,
		Units:          len(units),
		Users:          len(interactions),
		SkippedRecords: skipped,
		EventCounts:    make(map[models.Role]int),
		OutputDir:      outDir,
	}
	for role, list := range events {
		summary.EventCounts[role] = len(list)
	}

	logger.WithFields(map[string]interface{}{
		"run_id":          summary.RunID,
		"units":           summary.Units,
		"users":           summary.Users,
		"skipped_records": summary.SkippedRecords,
		"output_dir":      summary.OutputDir,
	}).Info("Categorize run finished")

	return summary, nil
}

func (s *CategorizeService) persist(runID string, events map[models.Role][]*models.RoleEvent, interactions []*models.FirstInteraction, units []*models.IssueUnit) error {
	if s.roleEventRepo == nil || s.firstInteractionRepo == nil || s.issueUnitRepo == nil {
		return nil
	}

	var all []*models.RoleEvent
	for _, role := range models.Roles {
		all = append(all, events[role]...)
	}
	if err := s.roleEventRepo.CreateBatch(runID, all); err != nil {
		return err
	}
	if err := s.firstInteractionRepo.CreateBatch(runID, interactions); err != nil {
		return err
	}
	return s.issueUnitRepo.CreateBatch(runID, units)
}
