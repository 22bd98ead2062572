package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSink inserts leads into the hosted leads table.
type PostgresSink struct {
	pool execer
}

// NewPostgresSink initializes a sink backed by pgxpool.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresSink{pool: pool}
}

func newPostgresSinkWithExec(exec execer) *PostgresSink {
	if exec == nil {
		panic("leads: exec required")
	}
	return &PostgresSink{pool: exec}
}

// Name implements Sink.
func (s *PostgresSink) Name() string { return "postgres" }

// Append inserts a new row.
func (s *PostgresSink) Append(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	date, err := toPGDate(lead.Date)
	if err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}

	query := `
		INSERT INTO leads (id, type, name, email, phone, message, requested_date, slots, created_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := s.pool.Exec(ctx, query,
		lead.ID,
		lead.Type,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		date,
		lead.Slots,
		lead.CreatedAt,
		lead.Processed,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// List implements Lister, oldest first.
func (s *PostgresSink) List(ctx context.Context) ([]Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, type, name, email, phone, message, requested_date,
		       COALESCE(slots, '{}'), created_at, processed
		FROM leads
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var (
			lead Lead
			date pgtype.Date
		)
		if err := rows.Scan(
			&lead.ID,
			&lead.Type,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.Message,
			&date,
			&lead.Slots,
			&lead.CreatedAt,
			&lead.Processed,
		); err != nil {
			return nil, fmt.Errorf("leads: scan lead: %w", err)
		}
		lead.Date = fromPGDate(date)
		if len(lead.Slots) == 0 {
			lead.Slots = nil
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func fromPGDate(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	key := d.Time.Format("2006-01-02")
	return &key
}

func toPGDate(key *string) (pgtype.Date, error) {
	if key == nil {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", *key)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}
