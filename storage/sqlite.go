package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"prewalk_engine/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolution_runs (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listing_id TEXT,
		listing_url TEXT,
		strategy TEXT,
		neighborhood TEXT,
		neighbors_hit INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON resolution_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_address ON resolution_runs(address);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateRun records the start of a resolution pass.
func (s *SQLiteStore) CreateRun(run *models.ResolutionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}

	_, err := s.db.Exec(`
		INSERT INTO resolution_runs (id, address, started_at, status, neighbors_hit)
		VALUES (?, ?, ?, ?, 0)`,
		run.ID.String(), run.Address, run.StartedAt, run.Status)
	return err
}

// FinishRun writes the outcome of a resolution pass.
func (s *SQLiteStore) FinishRun(run *models.ResolutionRun) error {
	now := time.Now()
	run.FinishedAt = &now

	_, err := s.db.Exec(`
		UPDATE resolution_runs SET finished_at = ?, status = ?, listing_id = ?,
			listing_url = ?, strategy = ?, neighborhood = ?, neighbors_hit = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingID, run.ListingURL,
		run.Strategy, run.Neighborhood, run.NeighborsHit, run.ErrorMessage, run.ID.String())
	return err
}

func (s *SQLiteStore) GetRun(id uuid.UUID) (*models.ResolutionRun, error) {
	row := s.db.QueryRow(`
		SELECT id, address, started_at, finished_at, status, listing_id, listing_url,
			strategy, neighborhood, neighbors_hit, error_message
		FROM resolution_runs WHERE id = ?`, id.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.ResolutionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, address, started_at, finished_at, status, listing_id, listing_url,
			strategy, neighborhood, neighbors_hit, error_message
		FROM resolution_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ResolutionRun
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

func scanRun(row rowScanner) (*models.ResolutionRun, error) {
	var run models.ResolutionRun
	var id string
	var listingID, listingURL, strategy, hood, errMsg sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&id, &run.Address, &run.StartedAt, &finishedAt, &run.Status,
		&listingID, &listingURL, &strategy, &hood, &run.NeighborsHit, &errMsg)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	run.ListingID = listingID.String
	run.ListingURL = listingURL.String
	run.Strategy = strategy.String
	run.Neighborhood = hood.String
	run.ErrorMessage = errMsg.String
	return &run, nil
}

// EnqueueCommand queues a command for the daemon loop to pick up.
func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	var paramsJSON interface{}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		paramsJSON = string(data)
	}

	result, err := s.db.Exec(`
		INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		cmd, paramsJSON, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}
