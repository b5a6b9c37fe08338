package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/casegraph/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// --- Cases ---

func (s *LibSQLStore) PutCase(ctx context.Context, rec *CaseRecord) error {
	if rec.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "case id is required")
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return storeFailure("marshal case", err).WithCase(rec.ID)
	}
	info := rec.Data.CaseInformation
	rec.UpdatedAt = timeOrNow(rec.UpdatedAt)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cases (id, case_id, customer_id, officer, date_created, date_closed, decision_count, data, import_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET case_id=excluded.case_id, customer_id=excluded.customer_id,
		   officer=excluded.officer, date_created=excluded.date_created, date_closed=excluded.date_closed,
		   decision_count=excluded.decision_count, data=excluded.data, import_id=excluded.import_id,
		   updated_at=excluded.updated_at`,
		rec.ID, info.CaseID, info.CustomerID, info.Officer, info.DateCreated, info.DateClosed,
		len(info.DecisionTree), string(data), nullStr(rec.ImportID), rec.UpdatedAt,
	)
	if err != nil {
		return storeFailure("put case", err).WithCase(rec.ID)
	}
	return nil
}

func (s *LibSQLStore) GetCase(ctx context.Context, id string) (*CaseRecord, error) {
	rec := &CaseRecord{}
	var (
		data     string
		importID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, import_id, updated_at FROM cases WHERE id = ?`, id,
	).Scan(&rec.ID, &data, &importID, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storeNotFound("case", id)
	}
	if err != nil {
		return nil, storeFailure("get case", err).WithCase(id)
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, storeFailure("unmarshal case", err).WithCase(id)
	}
	rec.ImportID = importID.String
	return rec, nil
}

func (s *LibSQLStore) ListCases(ctx context.Context, filter CaseFilter) ([]*CaseSummary, error) {
	var where []string
	var args []any

	if filter.Officer != "" {
		where = append(where, "officer = ?")
		args = append(args, filter.Officer)
	}
	if filter.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.OpenOnly {
		where = append(where, "date_closed = ''")
	}

	query := "SELECT id, case_id, customer_id, officer, date_created, date_closed, decision_count, updated_at FROM cases"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	switch {
	case filter.Limit > 0:
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	case filter.Offset > 0:
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeFailure("list cases", err)
	}
	defer rows.Close()

	var cases []*CaseSummary
	for rows.Next() {
		c := &CaseSummary{}
		if err := rows.Scan(&c.ID, &c.CaseID, &c.CustomerID, &c.Officer, &c.DateCreated,
			&c.DateClosed, &c.DecisionCount, &c.UpdatedAt); err != nil {
			return nil, storeFailure("scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list cases", err)
	}
	return cases, nil
}

func (s *LibSQLStore) ListCaseIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM cases ORDER BY id`)
	if err != nil {
		return nil, storeFailure("list case ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeFailure("scan case id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list case ids", err)
	}
	return ids, nil
}

func (s *LibSQLStore) DeleteCase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return storeFailure("delete case", err).WithCase(id)
	}
	return checkRowsAffected(res, "case", id)
}

// --- Import runs ---

func (s *LibSQLStore) CreateImport(ctx context.Context, run *ImportRun) error {
	if run.Status == "" {
		run.Status = ImportRunning
	}
	run.StartedAt = timeOrNow(run.StartedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, status, case_count, error, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Status), run.CaseCount, nullStr(run.Error), run.StartedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return schema.NewErrorf(schema.ErrCodeConflict, "import run %q already exists", run.ID).WithCause(err)
		}
		return storeFailure("create import", err)
	}
	return nil
}

func (s *LibSQLStore) CompleteImport(ctx context.Context, id string, caseCount int, importErr error) error {
	status, errMsg := importOutcome(importErr)
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET status = ?, case_count = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), caseCount, nullStr(errMsg), time.Now().UTC(), id,
	)
	if err != nil {
		return storeFailure("complete import", err)
	}
	return checkRowsAffected(res, "import run", id)
}

func (s *LibSQLStore) ListImports(ctx context.Context, limit int) ([]*ImportRun, error) {
	query := `SELECT id, source, status, case_count, error, started_at, completed_at FROM import_runs ORDER BY started_at DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeFailure("list imports", err)
	}
	defer rows.Close()

	var runs []*ImportRun
	for rows.Next() {
		run := &ImportRun{}
		var (
			status      string
			errMsg      sql.NullString
			completedAt sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Source, &status, &run.CaseCount, &errMsg,
			&run.StartedAt, &completedAt); err != nil {
			return nil, storeFailure("scan import", err)
		}
		run.Status = ImportStatus(status)
		run.Error = errMsg.String
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list imports", err)
	}
	return runs, nil
}

// --- Helpers ---

func storeNotFound(resource, id string) *schema.CaseGraphError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func storeFailure(op string, err error) *schema.CaseGraphError {
	return schema.NewErrorf(schema.ErrCodeStore, "%s: %v", op, err).WithCause(err)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeFailure("rows affected", err)
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

func importOutcome(importErr error) (ImportStatus, string) {
	if importErr != nil {
		return ImportFailed, importErr.Error()
	}
	return ImportCompleted, ""
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
