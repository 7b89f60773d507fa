package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/google/uuid"
)

type IssueUnitRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewIssueUnitRepository(db *sql.DB) *IssueUnitRepository {
	return &IssueUnitRepository{db: db}
}

// CreateBatch inserts one run's unit classifications in a single transaction
func (r *IssueUnitRepository) CreateBatch(runID string, units []*models.IssueUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO issue_units (
			id, run_id, number, dir, kind, merged, time_to_merge_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, unit := range units {
		_, err := stmt.Exec(
			uuid.New().String(), runID, unit.Number, unit.Dir,
			string(unit.Kind), unit.Merged, int64(unit.TimeToMerge/time.Second),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByNumber returns one unit's classification for a run
func (r *IssueUnitRepository) GetByNumber(runID string, number int) (*models.IssueUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT number, dir, kind, merged, time_to_merge_seconds
		FROM issue_units
		WHERE run_id = ? AND number = ?
	`

	var unit models.IssueUnit
	var kind string
	var seconds int64
	err := r.db.QueryRow(query, runID, number).Scan(&unit.Number, &unit.Dir, &kind, &unit.Merged, &seconds)
	if err != nil {
		return nil, err
	}
	unit.Kind = models.UnitKind(kind)
	unit.TimeToMerge = time.Duration(seconds) * time.Second

	return &unit, nil
}
