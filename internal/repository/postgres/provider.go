package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

type providerRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) repository.ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, name, default_price, slot_minutes, work_start, work_end,
			   created_at, updated_at
		FROM providers
		WHERE id = $1
	`
	var provider model.Provider
	err := r.db.GetContext(ctx, &provider, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) List(ctx context.Context) ([]*model.Provider, error) {
	query := `
		SELECT id, name, default_price, slot_minutes, work_start, work_end,
			   created_at, updated_at
		FROM providers
		ORDER BY name ASC
	`
	var providers []*model.Provider
	err := r.db.SelectContext(ctx, &providers, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}
