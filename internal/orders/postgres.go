package orders

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resumeats/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const orderColumns = `id, status, amount_cents, currency, template_key, resume_data,
	COALESCE(buyer_email, ''), provider_info, COALESCE(download_path, ''), COALESCE(error, ''),
	created_at, updated_at`

// PostgresRepository stores orders in PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool and verifies the connection
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations. A negative steps value
// rolls back that many migrations instead.
func Migrate(ctx context.Context, pool *pgxpool.Pool, steps int) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if steps < 0 {
		for i := 0; i > steps; i-- {
			if err := goose.DownContext(ctx, db, "migrations"); err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
		}
		return nil
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, now: time.Now}
}

func (r *PostgresRepository) Create(ctx context.Context, order *Order) error {
	providerInfo, err := marshalProviderInfo(order.ProviderInfo)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, status, amount_cents, currency, template_key, resume_data,
			buyer_email, provider_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7::text, ''), $8, $9, $10)
	`, order.ID, string(order.Status), order.AmountCents, order.Currency, order.TemplateKey,
		[]byte(order.ResumeData), order.BuyerEmail, providerInfo, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return order, err
}

func (r *PostgresRepository) Transition(ctx context.Context, id string, from Status, update Update) (*Order, error) {
	providerInfo, err := marshalProviderInfo(update.ProviderInfo)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE orders SET
			status = $3,
			provider_info = COALESCE($4::jsonb, provider_info),
			download_path = COALESCE(NULLIF($5::text, ''), download_path),
			error = COALESCE(NULLIF($6::text, ''), error),
			updated_at = $7
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		id, string(from), string(update.Status), providerInfo, update.DownloadPath, update.Error, r.now().UTC())

	order, err := scanOrder(row)
	if !errors.Is(err, pgx.ErrNoRows) {
		return order, err
	}

	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order status: %w", err)
	}
	return nil, fmt.Errorf("%w: order is %s, expected %s", ErrInvalidTransition, current, from)
}

func (r *PostgresRepository) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o            Order
		status       string
		resumeData   []byte
		providerInfo []byte
	)
	err := row.Scan(&o.ID, &status, &o.AmountCents, &o.Currency, &o.TemplateKey, &resumeData,
		&o.BuyerEmail, &providerInfo, &o.DownloadPath, &o.Error, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.Status = Status(status)
	o.ResumeData = json.RawMessage(resumeData)
	if len(providerInfo) > 0 {
		if err := json.Unmarshal(providerInfo, &o.ProviderInfo); err != nil {
			return nil, fmt.Errorf("failed to decode provider info: %w", err)
		}
	}
	return &o, nil
}

func marshalProviderInfo(info map[string]any) ([]byte, error) {
	if info == nil {
		return nil, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider info: %w", err)
	}
	return data, nil
}
