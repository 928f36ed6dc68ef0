package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sectors is the storage contract for the sector reference entity.
type Sectors interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Sector, error)
	GetByName(ctx context.Context, name string) (*Sector, error)
	ListAll(ctx context.Context) ([]*Sector, error)
	Create(ctx context.Context, sector *Sector) (*Sector, error)
	Update(ctx context.Context, sector *Sector) (*Sector, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type sectors struct {
	db *bun.DB
}

var _ Sectors = (*sectors)(nil)

func NewSectorsRepository(db *bun.DB) Sectors {
	return &sectors{db: db}
}

func (r *sectors) GetByID(ctx context.Context, id uuid.UUID) (*Sector, error) {
	record := &Sector{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}
	return record, nil
}

func (r *sectors) GetByName(ctx context.Context, name string) (*Sector, error) {
	record := &Sector{}
	err := r.db.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.name) = LOWER(?)", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}
	return record, nil
}

func (r *sectors) ListAll(ctx context.Context) ([]*Sector, error) {
	var records []*Sector
	err := r.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*Sector{}, nil
		}
		return nil, err
	}
	return records, nil
}

func (r *sectors) Create(ctx context.Context, sector *Sector) (*Sector, error) {
	if sector.ID == uuid.Nil {
		sector.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(sector).Exec(ctx); err != nil {
		return nil, err
	}

	return sector, nil
}

func (r *sectors) Update(ctx context.Context, sector *Sector) (*Sector, error) {
	_, err := r.db.NewUpdate().
		Model((*Sector)(nil)).
		Set("name = ?", sector.Name).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", sector.ID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, sector.ID)
}

func (r *sectors) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Sector)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return rows > 0, nil
}
