package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/waterorder/internal/domain"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: OrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*OrderRepository)(nil)

// OrderRepository implements domain.OrderRepository using SQLite.
type OrderRepository struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*OrderRepository, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready repository.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*OrderRepository, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &OrderRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *OrderRepository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (r *OrderRepository) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const (
	// timeFormat is fixed-width so that text ordering matches time ordering
	// once values are stored in UTC.
	timeFormat  = "2006-01-02T15:04:05.000000000Z07:00"
	selectOrder = `SELECT id, farm_id, start_date_time, duration_ns, status FROM water_orders`
)

func (r *OrderRepository) Add(ctx context.Context, candidate domain.Candidate) (domain.Order, error) {
	order := domain.NewOrder(candidate)
	now := time.Now().UTC().Format(timeFormat)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO water_orders (id, farm_id, start_date_time, duration_ns, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.FarmID,
		order.StartDateTime.UTC().Format(timeFormat),
		int64(order.Duration), string(order.Status),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, fmt.Errorf("inserting order %q: %w", order.ID, domain.ErrDuplicateOrder)
		}
		return domain.Order{}, fmt.Errorf("inserting order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) Remove(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM water_orders WHERE id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE id = ?`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}
	return order, err
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, selectOrder+` ORDER BY start_date_time, id`)
}

func (r *OrderRepository) ListByFarm(ctx context.Context, farmID string) ([]domain.Order, error) {
	orders, err := r.query(ctx, selectOrder+` WHERE farm_id = ? ORDER BY start_date_time, id`, farmID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &domain.NotFoundError{IDKind: domain.IDKindFarm, IDValue: farmID}
	}
	return orders, nil
}

func (r *OrderRepository) SetStatus(ctx context.Context, orderID string, status domain.Status) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("beginning status update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`UPDATE water_orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFormat), orderID,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("updating order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.Order{}, &domain.NotFoundError{IDKind: domain.IDKindOrder, IDValue: orderID}
	}

	order, err := scanOrder(tx.QueryRowContext(ctx, selectOrder+` WHERE id = ?`, orderID))
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("committing status update: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (domain.Order, error) {
	var o domain.Order
	var status, start string
	var durationNS int64

	if err := row.Scan(&o.ID, &o.FarmID, &start, &durationNS, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scanning order: %w", err)
	}

	parsed, err := time.Parse(timeFormat, start)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parsing start time of order %q: %w", o.ID, err)
	}

	o.StartDateTime = parsed
	o.Duration = time.Duration(durationNS)
	o.Status = domain.Status(status)
	return o, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
