package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const entryCols = `id, user_id, action, resource, resource_id, changes, ip_address, user_agent, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
		&e.Changes, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	)
	return &e, err
}

func (r *RepoPG) Insert(ctx context.Context, entry *Entry) error {
	q := `INSERT INTO audit_log (id, user_id, action, resource, resource_id, changes, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, q,
		entry.ID, entry.UserID, entry.Action, entry.Resource, entry.ResourceID,
		entry.Changes, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	return err
}

func (r *RepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM audit_log WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", entryCols)
	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectEntries(rows, total)
}

func (r *RepoPG) ListByResource(ctx context.Context, resource string, resourceID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM audit_log WHERE resource = $1 AND resource_id = $2",
		resource, resourceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log WHERE resource = $1 AND resource_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4", entryCols)
	rows, err := r.pool.Query(ctx, q, resource, resourceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectEntries(rows, total)
}

func collectEntries(rows pgx.Rows, total int) ([]*Entry, int, error) {
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
