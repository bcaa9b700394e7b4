package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pandeptwidyaop/bagfilter/internal/database"
	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

// HistoryService records every invocation of the external tool.
type HistoryService struct {
	db *database.DB
}

func NewHistoryService(db *database.DB) *HistoryService {
	return &HistoryService{db: db}
}

func (s *HistoryService) CreateRun(action models.RunAction, bagPath, command string) (*models.Run, error) {
	id := uuid.New().String()

	_, err := s.db.Exec(
		"INSERT INTO runs (id, action, status, bag_path, command) VALUES (?, ?, ?, ?, ?)",
		id, action, models.StatusPending, bagPath, command,
	)
	if err != nil {
		return nil, err
	}

	return s.GetRunByID(id)
}

func (s *HistoryService) StartRun(id string) error {
	_, err := s.db.Exec(
		"UPDATE runs SET status = ?, started_at = ? WHERE id = ?",
		models.StatusRunning, time.Now(), id,
	)
	return err
}

func (s *HistoryService) FinishRun(id string, status models.RunStatus, output, outputPath string, exitCode int) error {
	_, err := s.db.Exec(
		"UPDATE runs SET status = ?, output = ?, output_path = ?, exit_code = ?, finished_at = ? WHERE id = ?",
		status, output, outputPath, exitCode, time.Now(), id,
	)
	return err
}

func (s *HistoryService) GetRunByID(id string) (*models.Run, error) {
	row := s.db.QueryRow(
		"SELECT id, action, status, bag_path, output_path, command, output, exit_code, started_at, finished_at, created_at FROM runs WHERE id = ?",
		id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRuns lists runs, newest first.
func (s *HistoryService) GetRuns(limit, offset int) ([]models.Run, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, action, status, bag_path, output_path, command, output, exit_code,
		       started_at, finished_at, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var outputPath, output sql.NullString
	var exitCode sql.NullInt64
	var startedAt, finishedAt sql.NullTime

	if err := row.Scan(
		&run.ID, &run.Action, &run.Status, &run.BagPath, &outputPath, &run.Command, &output, &exitCode,
		&startedAt, &finishedAt, &run.CreatedAt,
	); err != nil {
		return nil, err
	}

	if outputPath.Valid {
		run.OutputPath = outputPath.String
	}
	if output.Valid {
		run.Output = output.String
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
