package store

import (
	"time"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

// CreateSyncRun records the start of an orchestrator execution.
func (db *DB) CreateSyncRun(run *domain.SyncRun) error {
	query := `INSERT INTO sync_runs (id, flow, started_at, fetched, ready)
		VALUES (:id, :flow, :started_at, :fetched, :ready)`

	_, err := db.NamedExec(query, run)
	return err
}

// FinishSyncRun closes out a run with its outcome.
func (db *DB) FinishSyncRun(id string, fetched int, ready bool, runErr error) error {
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	query := `UPDATE sync_runs SET finished_at = ?, fetched = ?, ready = ?, error = ? WHERE id = ?`
	_, err := db.Exec(query, time.Now().UTC(), fetched, ready, errMsg, id)
	return err
}

// ListSyncRuns returns the most recent runs, newest first.
func (db *DB) ListSyncRuns(limit int) ([]domain.SyncRun, error) {
	query := `SELECT id, flow, started_at, finished_at, fetched, ready, error
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`

	var runs []domain.SyncRun
	err := db.Select(&runs, query, limit)
	return runs, err
}
