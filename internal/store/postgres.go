package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store on a PostgreSQL JSONB table. Merge writes use the
// JSONB concatenation operator, which replaces top-level fields present in
// the payload and keeps the rest.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// EnsureSchema creates the documents table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Get returns the document data, or nil when absent.
func (p *Postgres) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// Set writes fields under collection/id, merging or replacing.
func (p *Postgres) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, id, err)
	}

	update := `data = excluded.data`
	if merge {
		update = `data = documents.data || excluded.data`
	}

	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET %s, updated_at = NOW()`, update),
		collection, id, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query returns documents matching all filters via JSONB containment.
func (p *Postgres) Query(ctx context.Context, collection string, filters map[string]any, orderBy string) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(filters) > 0 {
		filterJSON, err := json.Marshal(filters)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal query filters: %w", err)
		}
		query += ` AND data @> $2`
		args = append(args, filterJSON)
	}

	if orderBy != "" {
		field, direction := orderBy, "ASC"
		if strings.HasPrefix(orderBy, "-") {
			field, direction = orderBy[1:], "DESC"
		}
		query += fmt.Sprintf(` ORDER BY data->>$%d %s`, len(args)+1, direction)
		args = append(args, field)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
