package repositories

import (
	"database/sql"
	"sync"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/google/uuid"
)

type RoleEventRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewRoleEventRepository(db *sql.DB) *RoleEventRepository {
	return &RoleEventRepository{db: db}
}

// CreateBatch inserts one run's role events in a single transaction
func (r *RoleEventRepository) CreateBatch(runID string, events []*models.RoleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO role_events (
			id, run_id, role, occurred_at, username, source_path
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.Exec(
			uuid.New().String(), runID, string(event.Role),
			event.OccurredAt.UTC(), event.User, event.SourcePath,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByRole returns all stored events with the given role tag for a run
func (r *RoleEventRepository) GetByRole(runID string, role models.Role) ([]*models.RoleEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT role, occurred_at, username, source_path
		FROM role_events
		WHERE run_id = ? AND role = ?
		ORDER BY rowid
	`

	rows, err := r.db.Query(query, runID, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.RoleEvent
	for rows.Next() {
		var event models.RoleEvent
		if err := rows.Scan(&event.Role, &event.OccurredAt, &event.User, &event.SourcePath); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// CountByRole returns how many events of each role a run produced
func (r *RoleEventRepository) CountByRole(runID string) (map[models.Role]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT role, COUNT(*) FROM role_events WHERE run_id = ? GROUP BY role`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Role]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[models.Role(role)] = count
	}

	return counts, rows.Err()
}
