// Package store persists claims, their evidence and verdicts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/Lirov/claim-checker/internal/model"
)

// ErrNotFound is returned when a claim does not exist
var ErrNotFound = errors.New("claim not found")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store is the SQL-backed claim repository
type Store struct {
	db     *sqlx.DB
	driver string
	dsn    string
	now    func() time.Time
}

// Open connects to the database. Driver is postgres or sqlite.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers; keep a single connection.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, driver: driver, dsn: dsn, now: time.Now}, nil
}

// NormalizeDriver maps driver aliases to a supported driver name
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pq":
		return DriverPostgres, nil
	case "sqlite", "sqlite3", "":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// sqliteDSN enables foreign keys and a busy timeout on every connection
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the normalized driver name
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateClaim inserts a new pending claim
func (s *Store) CreateClaim(ctx context.Context, req model.VerifyRequest) (*model.Claim, error) {
	claim := &model.Claim{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		InputType: req.InputType,
		RawInput:  req.RawInput,
		Status:    model.ClaimStatusPending,
		CreatedAt: s.now().UTC(),
	}

	query := s.db.Rebind(`INSERT INTO claims (id, user_id, input_type, raw_input, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		claim.ID, claim.UserID, string(claim.InputType), claim.RawInput, string(claim.Status), claim.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}

	return claim, nil
}

// CompleteClaim stores evidence and verdict and marks the claim done, atomically.
// Evidence rank follows slice order.
func (s *Store) CompleteClaim(ctx context.Context, claimID string, evidence []model.EvidenceItem, verdict model.Verdict) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now().UTC()

	insertEvidence := tx.Rebind(`INSERT INTO evidence (id, claim_id, source, url, title, snippet, score, rank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, e := range evidence {
		if _, err = tx.ExecContext(ctx, insertEvidence,
			uuid.NewString(), claimID, e.Source, e.URL, e.Title, e.Snippet, e.Score, i, now); err != nil {
			return fmt.Errorf("insert evidence: %w", err)
		}
	}

	insertVerdict := tx.Rebind(`INSERT INTO verdicts (id, claim_id, label, confidence, explanation, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err = tx.ExecContext(ctx, insertVerdict,
		uuid.NewString(), claimID, string(verdict.Label), verdict.Confidence, verdict.Explanation, now); err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}

	if err = s.updateStatus(ctx, tx, claimID, model.ClaimStatusDone); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FailClaim marks a pending claim as errored
func (s *Store) FailClaim(ctx context.Context, claimID string) error {
	return s.updateStatus(ctx, s.db, claimID, model.ClaimStatusError)
}

// updateStatus is the only writer of claims.status after insert.
// It moves a pending claim to a terminal status.
func (s *Store) updateStatus(ctx context.Context, ext sqlx.ExtContext, claimID string, to model.ClaimStatus) error {
	if err := model.CheckTransition(model.ClaimStatusPending, to); err != nil {
		return err
	}
	if !validID(claimID) {
		return ErrNotFound
	}

	res, err := ext.ExecContext(ctx, s.db.Rebind(`UPDATE claims SET status = ? WHERE id = ? AND status = ?`),
		string(to), claimID, string(model.ClaimStatusPending))
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	if n == 1 {
		return nil
	}

	var current model.ClaimStatus
	err = sqlx.GetContext(ctx, ext, &current, s.db.Rebind(`SELECT status FROM claims WHERE id = ?`), claimID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read claim status: %w", err)
	}
	return model.CheckTransition(current, to)
}

// GetClaim returns a claim by id
func (s *Store) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	if !validID(claimID) {
		return nil, ErrNotFound
	}

	var claim model.Claim
	err := s.db.GetContext(ctx, &claim, s.db.Rebind(`SELECT id, user_id, input_type, raw_input, status, created_at
		FROM claims WHERE id = ?`), claimID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return &claim, nil
}

// GetVerdict returns the verdict for a claim, or nil if there is none
func (s *Store) GetVerdict(ctx context.Context, claimID string) (*model.Verdict, error) {
	if !validID(claimID) {
		return nil, nil
	}

	var v model.Verdict
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT id, claim_id, label, confidence, explanation, created_at
		FROM verdicts WHERE claim_id = ?`), claimID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verdict: %w", err)
	}
	return &v, nil
}

// ListEvidence returns a claim's evidence in retained rank order
func (s *Store) ListEvidence(ctx context.Context, claimID string) ([]model.EvidenceItem, error) {
	items := []model.EvidenceItem{}
	if !validID(claimID) {
		return items, nil
	}

	err := s.db.SelectContext(ctx, &items, s.db.Rebind(`SELECT id, claim_id, source, url, title, snippet, score, rank, created_at
		FROM evidence WHERE claim_id = ? ORDER BY rank ASC`), claimID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return items, nil
}

// validID reports whether id could name a claim. Postgres rejects
// malformed UUIDs with an error rather than an empty result.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
