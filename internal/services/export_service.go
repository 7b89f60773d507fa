package services

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alimgiray/heartbeat/internal/models"
	"golang.org/x/sync/errgroup"
)

// TimestampLayout is the second-precision UTC format used both by the
// scraped records and by every output line.
const TimestampLayout = "2006-01-02T15:04:05Z"

// RoleFileNames maps each role to its output file. Downstream tools
// split lines on tab and index fields by position, so the line format
// in writeRoleFile is load-bearing.
var RoleFileNames = map[models.Role]string{
	models.RoleReporter:    "reporters.txt",
	models.RoleResponder:   "responders.txt",
	models.RoleSubmitter:   "submitters.txt",
	models.RoleContributor: "contributors.txt",
	models.RoleReviewer:    "reviewers.txt",
	models.RoleMerger:      "mergers.txt",
}

// FirstInteractionsFileName is the per-user earliest-interaction output.
const FirstInteractionsFileName = "first-interactions.txt"

// ExportService writes the classification results as tab-separated
// files, one per role plus the first-interactions file.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// Export writes all seven output files into outDir. The files are
// independent, so they are written concurrently.
func (s *ExportService) Export(outDir string, events map[models.Role][]*models.RoleEvent, interactions []*models.FirstInteraction) error {
	var g errgroup.Group
	for _, role := range models.Roles {
		role := role
		g.Go(func() error {
			return s.writeRoleFile(filepath.Join(outDir, RoleFileNames[role]), events[role])
		})
	}
	g.Go(func() error {
		return s.writeInteractionsFile(filepath.Join(outDir, FirstInteractionsFileName), interactions)
	})
	return g.Wait()
}

func (s *ExportService) writeRoleFile(path string, events []*models.RoleEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, event := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			event.Role,
			event.OccurredAt.UTC().Format(TimestampLayout),
			event.User,
			event.SourcePath,
		)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *ExportService) writeInteractionsFile(path string, interactions []*models.FirstInteraction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, fi := range interactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			fi.User,
			fi.Dir,
			fi.File,
			fi.OccurredAt.UTC().Format(TimestampLayout),
		)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
