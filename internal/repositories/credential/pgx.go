package credential

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

func (r *PgxRepository) Get(ctx context.Context, domain, name string) (string, error) {
	query, args, err := repositories.SqBuilder.
		Select("value").
		From("credentials").
		Where(squirrel.Eq{"domain": domain, "name": name}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build credential query: %w", err)
	}

	var value string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get credential %s/%s: %w", domain, name, err)
	}
	return value, nil
}

func (r *PgxRepository) Set(ctx context.Context, domain, name, value string) error {
	query, args, err := repositories.SqBuilder.
		Insert("credentials").
		Columns("domain", "name", "value", "updated_at").
		Values(domain, name, value, time.Now()).
		Suffix("ON CONFLICT (domain, name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build credential upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set credential %s/%s: %w", domain, name, err)
	}
	return nil
}

var _ Repository = (*PgxRepository)(nil)
