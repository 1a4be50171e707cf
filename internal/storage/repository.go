package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite-backed entity store. Every operation that touches
// owned rows carries the owner id in its predicate; a row belonging to
// another owner is invisible, not access-denied.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection keeps
	// concurrent callers queued in the driver instead of failing with busy.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// each set field maps to exactly one appended predicate. Date bounds are
// inclusive on both ends.
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID int64
	StartDate  time.Time
	EndDate    time.Time
}

// TransactionPatch carries a partial update. Nil fields keep their prior
// values.
type TransactionPatch struct {
	CategoryID *int64
	Amount     *decimal.Decimal
	Less       *decimal.Decimal
	Type       *core.TransactionType
	Detail     *string
	Date       *time.Time
}

// TransactionRecord is a transaction with its category joined in, when the
// weak reference still resolves.
type TransactionRecord struct {
	core.Transaction
	Category *core.Category
}

const timestampLayout = time.RFC3339

// CreateCategory persists a new category for its owner.
func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	c.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (owner_id, name, code, type, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		c.OwnerID, c.Name, c.Code, string(c.Type), c.CreatedAt.Format(timestampLayout),
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("create category: %w", core.ErrDuplicateCode)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID,
		"owner_id", c.OwnerID,
		"name", c.Name,
		"type", c.Type)

	return c, nil
}

// ListCategories returns the owner's categories, oldest first. A non-empty
// search narrows the result to categories whose name or code contains it,
// case-insensitively.
func (r *Repository) ListCategories(ctx context.Context, ownerID, search string) ([]core.Category, error) {
	query := `SELECT id, owner_id, name, code, type, created_at
	          FROM categories
	          WHERE owner_id = ?`
	args := []any{ownerID}

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query += ` AND (name LIKE ? ESCAPE '\' OR code LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// CreateTransaction inserts a transaction and assigns its per-day serial.
// The serial is computed inside the INSERT itself (next value over the
// owner's day, scoped by the same predicate), so two concurrent creates for
// one owner+day cannot observe the same count and collide; the
// (owner, date, serial) unique index backs that up.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	// Defense in depth: the API layer validates too, but the repository must
	// stay correct for callers that bypass it.
	tx.Date = core.Day(tx.Date)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.CreatedAt = time.Now().UTC()
	day := tx.Date.Format(core.DateLayout)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (owner_id, serial, category_id, amount, less, type, detail, tx_date, created_at)
		 SELECT ?, COALESCE(MAX(serial), 0) + 1, ?, ?, ?, ?, ?, ?, ?
		 FROM transactions
		 WHERE owner_id = ? AND tx_date = ?
		 RETURNING id, serial`,
		tx.OwnerID, tx.CategoryID, core.FormatAmount(tx.Amount), core.FormatAmount(tx.Less),
		string(tx.Type), tx.Detail, day, tx.CreatedAt.Format(timestampLayout),
		tx.OwnerID, day,
	).Scan(&tx.ID, &tx.Serial)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"owner_id", tx.OwnerID,
		"serial", tx.Serial,
		"type", tx.Type,
		"amount", core.FormatAmount(tx.Amount),
		"date", day)

	return tx, nil
}

// ListTransactions returns the owner's transactions with categories joined,
// most recent date first, ties broken by id descending for determinism.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string, f TransactionFilter) ([]TransactionRecord, error) {
	query := `SELECT t.id, t.owner_id, t.serial, t.category_id, t.amount, t.less, t.type, t.detail, t.tx_date, t.created_at,
	                 c.id, c.owner_id, c.name, c.code, c.type, c.created_at
	          FROM transactions t
	          LEFT JOIN categories c ON c.id = t.category_id
	          WHERE t.owner_id = ?`
	args := []any{ownerID}

	if f.Type != "" {
		if err := f.Type.Validate(); err != nil {
			return nil, err
		}
		query += " AND t.type = ?"
		args = append(args, string(f.Type))
	}
	if f.CategoryID != 0 {
		query += " AND t.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if !f.StartDate.IsZero() {
		query += " AND t.tx_date >= ?"
		args = append(args, core.Day(f.StartDate).Format(core.DateLayout))
	}
	if !f.EndDate.IsZero() {
		query += " AND t.tx_date <= ?"
		args = append(args, core.Day(f.EndDate).Format(core.DateLayout))
	}
	query += " ORDER BY t.tx_date DESC, t.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		rec, err := scanTransactionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// ListTransactionsByDay returns the owner's transactions for one UTC
// calendar day, in serial order.
func (r *Repository) ListTransactionsByDay(ctx context.Context, ownerID string, day time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, serial, category_id, amount, less, type, detail, tx_date, created_at
		 FROM transactions
		 WHERE owner_id = ? AND tx_date = ?
		 ORDER BY serial ASC`,
		ownerID, core.Day(day).Format(core.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions by day: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions by day: %w", err)
	}
	return out, nil
}

// GetTransaction returns one owned transaction, or core.ErrNotFound.
func (r *Repository) GetTransaction(ctx context.Context, id int64, ownerID string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, serial, category_id, amount, less, type, detail, tx_date, created_at
		 FROM transactions
		 WHERE id = ? AND owner_id = ?`,
		id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction applies a partial patch to an owned transaction.
// Supplied fields are re-validated; everything else keeps its prior value.
// Returns core.ErrNotFound when no row matches id and owner.
func (r *Repository) UpdateTransaction(ctx context.Context, id int64, ownerID string, patch TransactionPatch) (core.Transaction, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer dbtx.Rollback()

	row := dbtx.QueryRowContext(ctx,
		`SELECT id, owner_id, serial, category_id, amount, less, type, detail, tx_date, created_at
		 FROM transactions
		 WHERE id = ? AND owner_id = ?`,
		id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction for update: %w", err)
	}

	origDay := tx.Date

	if patch.CategoryID != nil {
		tx.CategoryID = patch.CategoryID
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Less != nil {
		tx.Less = *patch.Less
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Detail != nil {
		tx.Detail = *patch.Detail
	}
	if patch.Date != nil {
		tx.Date = core.Day(*patch.Date)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// Serials are positions in a day's log. An update that keeps the date
	// keeps its serial; moving the transaction to another day appends it to
	// the target day's log, so the (owner, date, serial) unique index is
	// never violated by a move.
	if tx.Date.Equal(origDay) {
		_, err = dbtx.ExecContext(ctx,
			`UPDATE transactions
			 SET category_id = ?, amount = ?, less = ?, type = ?, detail = ?
			 WHERE id = ? AND owner_id = ?`,
			tx.CategoryID, core.FormatAmount(tx.Amount), core.FormatAmount(tx.Less),
			string(tx.Type), tx.Detail,
			id, ownerID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
	} else {
		// The row still carries its old tx_date when the subquery runs, so
		// MAX ranges over the target day only.
		day := tx.Date.Format(core.DateLayout)
		err = dbtx.QueryRowContext(ctx,
			`UPDATE transactions
			 SET category_id = ?, amount = ?, less = ?, type = ?, detail = ?, tx_date = ?,
			     serial = (SELECT COALESCE(MAX(serial), 0) + 1
			               FROM transactions
			               WHERE owner_id = ? AND tx_date = ?)
			 WHERE id = ? AND owner_id = ?
			 RETURNING serial`,
			tx.CategoryID, core.FormatAmount(tx.Amount), core.FormatAmount(tx.Less),
			string(tx.Type), tx.Detail, day,
			ownerID, day,
			id, ownerID,
		).Scan(&tx.Serial)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		"id", tx.ID,
		"owner_id", tx.OwnerID,
		"type", tx.Type,
		"amount", core.FormatAmount(tx.Amount))

	return tx, nil
}

// DeleteTransaction removes an owned transaction and reports whether a row
// was removed. Serials of the remaining same-day transactions are not
// renumbered; gaps are an accepted property of the day log.
func (r *Repository) DeleteTransaction(ctx context.Context, id int64, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`,
		id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)
	}
	return n > 0, nil
}

// UpsertDailyReport stores a snapshot keyed by (owner, report date).
// Regenerating a date replaces the previous snapshot and resets its export
// state so the worker picks up the new totals.
func (r *Repository) UpsertDailyReport(ctx context.Context, rep core.DailyReport) (core.DailyReport, error) {
	if err := rep.Validate(); err != nil {
		return core.DailyReport{}, err
	}

	rep.ReportDate = core.Day(rep.ReportDate)
	rep.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO daily_reports (owner_id, report_date, total_credit, total_debit, net_change, export_state, created_at)
		 VALUES (?, ?, ?, ?, ?, 'pending', ?)
		 ON CONFLICT (owner_id, report_date) DO UPDATE SET
		     total_credit = excluded.total_credit,
		     total_debit  = excluded.total_debit,
		     net_change   = excluded.net_change,
		     export_state = 'pending',
		     created_at   = excluded.created_at
		 RETURNING id`,
		rep.OwnerID, rep.ReportDate.Format(core.DateLayout),
		core.FormatAmount(rep.TotalCredit), core.FormatAmount(rep.TotalDebit), core.FormatAmount(rep.NetChange),
		rep.CreatedAt.Format(timestampLayout),
	).Scan(&rep.ID)
	if err != nil {
		return core.DailyReport{}, fmt.Errorf("upsert daily report: %w", err)
	}

	slog.InfoContext(ctx, "Daily report stored",
		"id", rep.ID,
		"owner_id", rep.OwnerID,
		"report_date", rep.ReportDate.Format(core.DateLayout),
		"net_change", core.FormatAmount(rep.NetChange))

	return rep, nil
}

// ListDailyReports returns the owner's snapshots, most recent date first.
func (r *Repository) ListDailyReports(ctx context.Context, ownerID string) ([]core.DailyReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, report_date, total_credit, total_debit, net_change, created_at
		 FROM daily_reports
		 WHERE owner_id = ?
		 ORDER BY report_date DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list daily reports: %w", err)
	}
	defer rows.Close()

	var out []core.DailyReport
	for rows.Next() {
		rep, err := scanDailyReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily reports: %w", err)
	}
	return out, nil
}

// GetDailyReport fetches one snapshot by id. Used by the export worker,
// which is a system actor working across owners.
func (r *Repository) GetDailyReport(ctx context.Context, id int64) (core.DailyReport, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, report_date, total_credit, total_debit, net_change, created_at
		 FROM daily_reports
		 WHERE id = ?`,
		id)
	rep, err := scanDailyReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyReport{}, core.ErrNotFound
	}
	if err != nil {
		return core.DailyReport{}, fmt.Errorf("get daily report: %w", err)
	}
	return rep, nil
}

// ListPendingExportReports returns snapshots not yet exported, oldest first.
func (r *Repository) ListPendingExportReports(ctx context.Context, limit int) ([]core.DailyReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, report_date, total_credit, total_debit, net_change, created_at
		 FROM daily_reports
		 WHERE export_state = 'pending'
		 ORDER BY id ASC
		 LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export reports: %w", err)
	}
	defer rows.Close()

	var out []core.DailyReport
	for rows.Next() {
		rep, err := scanDailyReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending export reports: %w", err)
	}
	return out, nil
}

// MarkReportExported marks a snapshot as successfully exported.
func (r *Repository) MarkReportExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_reports SET export_state = 'exported' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark report exported: %w", err)
	}
	slog.InfoContext(ctx, "Report marked as exported", "id", id)
	return nil
}

// MarkReportExportError marks a snapshot as having failed export.
func (r *Repository) MarkReportExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_reports SET export_state = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark report export error: %w", err)
	}
	slog.WarnContext(ctx, "Report marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(s rowScanner) (core.Category, error) {
	var (
		c       core.Category
		typ     string
		created string
	)
	if err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Code, &typ, &created); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	var err error
	if c.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Category{}, fmt.Errorf("created_at column: %w", err)
	}
	return c, nil
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		tx       core.Transaction
		category sql.NullInt64
		amount   string
		less     string
		typ      string
		txDate   string
		created  string
	)
	if err := s.Scan(&tx.ID, &tx.OwnerID, &tx.Serial, &category, &amount, &less, &typ, &tx.Detail, &txDate, &created); err != nil {
		return core.Transaction{}, err
	}
	if category.Valid {
		tx.CategoryID = &category.Int64
	}
	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("amount column %q: %w", amount, err)
	}
	if tx.Less, err = decimal.NewFromString(less); err != nil {
		return core.Transaction{}, fmt.Errorf("less column %q: %w", less, err)
	}
	tx.Type = core.TransactionType(typ)
	if tx.Date, err = time.ParseInLocation(core.DateLayout, txDate, time.UTC); err != nil {
		return core.Transaction{}, fmt.Errorf("tx_date column %q: %w", txDate, err)
	}
	if tx.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Transaction{}, fmt.Errorf("created_at column: %w", err)
	}
	return tx, nil
}

func scanTransactionRecord(s rowScanner) (TransactionRecord, error) {
	var (
		rec      TransactionRecord
		category sql.NullInt64
		amount   string
		less     string
		typ      string
		txDate   string
		created  string

		cID      sql.NullInt64
		cOwner   sql.NullString
		cName    sql.NullString
		cCode    sql.NullString
		cType    sql.NullString
		cCreated sql.NullString
	)
	err := s.Scan(&rec.ID, &rec.OwnerID, &rec.Serial, &category, &amount, &less, &typ, &rec.Detail, &txDate, &created,
		&cID, &cOwner, &cName, &cCode, &cType, &cCreated)
	if err != nil {
		return TransactionRecord{}, err
	}
	if category.Valid {
		rec.CategoryID = &category.Int64
	}
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return TransactionRecord{}, fmt.Errorf("amount column %q: %w", amount, err)
	}
	if rec.Less, err = decimal.NewFromString(less); err != nil {
		return TransactionRecord{}, fmt.Errorf("less column %q: %w", less, err)
	}
	rec.Type = core.TransactionType(typ)
	if rec.Date, err = time.ParseInLocation(core.DateLayout, txDate, time.UTC); err != nil {
		return TransactionRecord{}, fmt.Errorf("tx_date column %q: %w", txDate, err)
	}
	if rec.CreatedAt, err = parseTimestamp(created); err != nil {
		return TransactionRecord{}, fmt.Errorf("created_at column: %w", err)
	}

	if cID.Valid {
		catCreated, err := parseTimestamp(cCreated.String)
		if err != nil {
			return TransactionRecord{}, fmt.Errorf("category created_at column: %w", err)
		}
		rec.Category = &core.Category{
			ID:        cID.Int64,
			OwnerID:   cOwner.String,
			Name:      cName.String,
			Code:      cCode.String,
			Type:      core.TransactionType(cType.String),
			CreatedAt: catCreated,
		}
	}
	return rec, nil
}

func scanDailyReport(s rowScanner) (core.DailyReport, error) {
	var (
		rep     core.DailyReport
		date    string
		credit  string
		debit   string
		net     string
		created string
	)
	if err := s.Scan(&rep.ID, &rep.OwnerID, &date, &credit, &debit, &net, &created); err != nil {
		return core.DailyReport{}, err
	}
	var err error
	if rep.ReportDate, err = time.ParseInLocation(core.DateLayout, date, time.UTC); err != nil {
		return core.DailyReport{}, fmt.Errorf("report_date column %q: %w", date, err)
	}
	if rep.TotalCredit, err = decimal.NewFromString(credit); err != nil {
		return core.DailyReport{}, fmt.Errorf("total_credit column %q: %w", credit, err)
	}
	if rep.TotalDebit, err = decimal.NewFromString(debit); err != nil {
		return core.DailyReport{}, fmt.Errorf("total_debit column %q: %w", debit, err)
	}
	if rep.NetChange, err = decimal.NewFromString(net); err != nil {
		return core.DailyReport{}, fmt.Errorf("net_change column %q: %w", net, err)
	}
	if rep.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.DailyReport{}, fmt.Errorf("created_at column: %w", err)
	}
	return rep, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	// CURRENT_TIMESTAMP default, should not happen for rows we wrote.
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp %q: unsupported format", s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
