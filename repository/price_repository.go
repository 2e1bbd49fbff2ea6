package repository

import (
	"context"
	"errors"
	"fmt"

	"mir4tracker/database"
	"mir4tracker/models"

	"github.com/jackc/pgx/v5"
)

// PriceRepository implements the singleton price table on PostgreSQL
type PriceRepository struct {
	q queryable
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *database.DB) *PriceRepository {
	return &PriceRepository{q: db.Pool}
}

// Get returns the stored price table, or nil when it has not been provisioned
func (r *PriceRepository) Get(ctx context.Context) (*models.BossPrices, error) {
	query := `
		SELECT id, medio2_price, grande2_price, medio4_price, grande4_price,
			medio6_price, grande6_price, medio7_price, grande7_price,
			medio8_price, grande8_price, xama_price, praca_4f_price, cracha_epica_price
		FROM boss_prices
		WHERE id = $1
	`

	var p models.BossPrices
	err := r.q.QueryRow(ctx, query, models.DefaultPricesID).Scan(
		&p.ID,
		&p.Medio2Price,
		&p.Grande2Price,
		&p.Medio4Price,
		&p.Grande4Price,
		&p.Medio6Price,
		&p.Grande6Price,
		&p.Medio7Price,
		&p.Grande7Price,
		&p.Medio8Price,
		&p.Grande8Price,
		&p.XamaPrice,
		&p.Praca4FPrice,
		&p.CrachaEpicaPrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boss prices: %w", err)
	}

	return &p, nil
}

// Upsert stores the price table under the well-known key
func (r *PriceRepository) Upsert(ctx context.Context, p *models.BossPrices) error {
	query := `
		INSERT INTO boss_prices (
			id, medio2_price, grande2_price, medio4_price, grande4_price,
			medio6_price, grande6_price, medio7_price, grande7_price,
			medio8_price, grande8_price, xama_price, praca_4f_price, cracha_epica_price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			medio2_price = EXCLUDED.medio2_price,
			grande2_price = EXCLUDED.grande2_price,
			medio4_price = EXCLUDED.medio4_price,
			grande4_price = EXCLUDED.grande4_price,
			medio6_price = EXCLUDED.medio6_price,
			grande6_price = EXCLUDED.grande6_price,
			medio7_price = EXCLUDED.medio7_price,
			grande7_price = EXCLUDED.grande7_price,
			medio8_price = EXCLUDED.medio8_price,
			grande8_price = EXCLUDED.grande8_price,
			xama_price = EXCLUDED.xama_price,
			praca_4f_price = EXCLUDED.praca_4f_price,
			cracha_epica_price = EXCLUDED.cracha_epica_price
	`

	_, err := r.q.Exec(ctx, query,
		models.DefaultPricesID,
		p.Medio2Price,
		p.Grande2Price,
		p.Medio4Price,
		p.Grande4Price,
		p.Medio6Price,
		p.Grande6Price,
		p.Medio7Price,
		p.Grande7Price,
		p.Medio8Price,
		p.Grande8Price,
		p.XamaPrice,
		p.Praca4FPrice,
		p.CrachaEpicaPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert boss prices: %w", err)
	}

	return nil
}
