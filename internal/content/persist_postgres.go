package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresPersister stores each subject as a jsonb row, ordered by position.
type PostgresPersister struct {
	pool *pgxpool.Pool
}

// NewPostgresPersister creates a Postgres-backed persister and ensures the
// subjects table exists.
func NewPostgresPersister(ctx context.Context, pool *pgxpool.Pool) (*PostgresPersister, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS subjects (
			id         text PRIMARY KEY,
			position   int  NOT NULL,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure subjects table: %w", err)
	}

	return &PostgresPersister{pool: pool}, nil
}

func (p *PostgresPersister) Load(ctx context.Context) (Tree, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT data FROM subjects ORDER BY position ASC`)
	if err != nil {
		return Tree{}, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var tree Tree
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return Tree{}, fmt.Errorf("scan subject: %w", err)
		}
		var subj Subject
		if err := json.Unmarshal(data, &subj); err != nil {
			return Tree{}, fmt.Errorf("parse subject row: %w", err)
		}
		tree.Subjects = append(tree.Subjects, subj)
	}
	if err := rows.Err(); err != nil {
		return Tree{}, fmt.Errorf("iterate subjects: %w", err)
	}
	return tree, nil
}

// Save replaces the whole table with the current tree in one transaction.
// The tree is small (one user's syllabus); rewriting it keeps row order and
// cascade deletes trivially correct.
func (p *PostgresPersister) Save(ctx context.Context, tree Tree) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM subjects`); err != nil {
		return fmt.Errorf("clear subjects: %w", err)
	}

	for i, subj := range tree.Subjects {
		data, err := json.Marshal(subj)
		if err != nil {
			return fmt.Errorf("marshal subject %s: %w", subj.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO subjects (id, position, data, updated_at)
			 VALUES ($1, $2, $3::jsonb, NOW())`,
			subj.ID, i, string(data),
		); err != nil {
			return fmt.Errorf("insert subject %s: %w", subj.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
