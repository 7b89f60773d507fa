package repositories

import (
	"database/sql"
	"sync"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/google/uuid"
)

type FirstInteractionRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewFirstInteractionRepository(db *sql.DB) *FirstInteractionRepository {
	return &FirstInteractionRepository{db: db}
}

// CreateBatch inserts one run's first-interaction entries in a single transaction
func (r *FirstInteractionRepository) CreateBatch(runID string, interactions []*models.FirstInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO first_interactions (
			id, run_id, username, dir, file, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, fi := range interactions {
		_, err := stmt.Exec(
			uuid.New().String(), runID, fi.User, fi.Dir, fi.File, fi.OccurredAt.UTC(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByUser returns one user's first interaction for a run
func (r *FirstInteractionRepository) GetByUser(runID, username string) (*models.FirstInteraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT username, dir, file, occurred_at
		FROM first_interactions
		WHERE run_id = ? AND username = ?
	`

	var fi models.FirstInteraction
	err := r.db.QueryRow(query, runID, username).Scan(&fi.User, &fi.Dir, &fi.File, &fi.OccurredAt)
	if err != nil {
		return nil, err
	}

	return &fi, nil
}

// GetAll returns every first interaction of a run, sorted by username
func (r *FirstInteractionRepository) GetAll(runID string) ([]*models.FirstInteraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT username, dir, file, occurred_at
		FROM first_interactions
		WHERE run_id = ?
		ORDER BY username
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*models.FirstInteraction
	for rows.Next() {
		var fi models.FirstInteraction
		if err := rows.Scan(&fi.User, &fi.Dir, &fi.File, &fi.OccurredAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, &fi)
	}

	return interactions, rows.Err()
}
