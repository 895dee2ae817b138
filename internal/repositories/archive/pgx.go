package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/bradenhilton/gdl-extractors/internal/repositories"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *PgxRepository) Exists(ctx context.Context, key string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("archive_entries").
		Where(squirrel.Eq{"entry_key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build archive query: %w", err)
	}

	var one int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archive entry %s: %w", key, err)
	}
	return true, nil
}

func (r *PgxRepository) Create(ctx context.Context, key string) error {
	query, args, err := repositories.SqBuilder.
		Insert("archive_entries").
		Columns("entry_key", "created_at").
		Values(key, time.Now()).
		Suffix("ON CONFLICT (entry_key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCannotCreate, key, err)
	}
	return nil
}

var _ Repository = (*PgxRepository)(nil)
