package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mir4tracker/database"
	"mir4tracker/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, name, bosses, sala_pico, special_bosses, materials,
	craft_resources, gold, confirmed, confirmed_at, created_at
`

// AccountRepository implements the account record store on PostgreSQL
type AccountRepository struct {
	db *database.DB
	q  queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db, q: db.Pool}
}

// newAccountRepositoryWithTx creates an account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by its identifier
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}

	return account, nil
}

// GetAll returns up to limit accounts ordered by creation time
func (r *AccountRepository) GetAll(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id LIMIT $1`

	return r.queryAccounts(ctx, query, limit)
}

// GetConfirmed returns accounts that are confirmed and carry a confirmation timestamp
func (r *AccountRepository) GetConfirmed(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE confirmed AND confirmed_at IS NOT NULL
		ORDER BY created_at, id
	`

	return r.queryAccounts(ctx, query)
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	groups, err := marshalGroups(account)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.q.Exec(ctx, query,
		account.ID,
		account.Name,
		groups.bosses,
		account.SalaPico,
		groups.specialBosses,
		groups.materials,
		groups.craftResources,
		account.Gold,
		account.Confirmed,
		account.ConfirmedAt,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Update locks the row, applies mutate and writes the result in one transaction
func (r *AccountRepository) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	if r.db == nil {
		return r.update(ctx, id, mutate)
	}

	var updated *models.Account
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = newAccountRepositoryWithTx(tx).update(ctx, id, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *AccountRepository) update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
	}

	if err := mutate(account); err != nil {
		return nil, err
	}

	groups, err := marshalGroups(account)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE accounts
		SET name = $2,
			bosses = $3,
			sala_pico = $4,
			special_bosses = $5,
			materials = $6,
			craft_resources = $7,
			gold = $8,
			confirmed = $9,
			confirmed_at = $10
		WHERE id = $1
	`

	_, err = r.q.Exec(ctx, update,
		id,
		account.Name,
		groups.bosses,
		account.SalaPico,
		groups.specialBosses,
		groups.materials,
		groups.craftResources,
		account.Gold,
		account.Confirmed,
		account.ConfirmedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", id, err)
	}

	account.ID = id
	return account, nil
}

// Delete removes an account and returns the number of deleted rows
func (r *AccountRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// jsonGroups holds the JSONB encodings of the counter groups
type jsonGroups struct {
	bosses         []byte
	specialBosses  []byte
	materials      []byte
	craftResources []byte
}

func marshalGroups(account *models.Account) (*jsonGroups, error) {
	var (
		groups jsonGroups
		err    error
	)
	if groups.bosses, err = json.Marshal(account.Bosses); err != nil {
		return nil, fmt.Errorf("failed to marshal bosses: %w", err)
	}
	if groups.specialBosses, err = json.Marshal(account.SpecialBosses); err != nil {
		return nil, fmt.Errorf("failed to marshal special bosses: %w", err)
	}
	if groups.materials, err = json.Marshal(account.Materials); err != nil {
		return nil, fmt.Errorf("failed to marshal materials: %w", err)
	}
	if groups.craftResources, err = json.Marshal(account.CraftResources); err != nil {
		return nil, fmt.Errorf("failed to marshal craft resources: %w", err)
	}
	return &groups, nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		account models.Account
		groups  jsonGroups
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&groups.bosses,
		&account.SalaPico,
		&groups.specialBosses,
		&groups.materials,
		&groups.craftResources,
		&account.Gold,
		&account.Confirmed,
		&account.ConfirmedAt,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Missing keys in older rows decode as zero
	targets := []struct {
		data []byte
		dest any
	}{
		{groups.bosses, &account.Bosses},
		{groups.specialBosses, &account.SpecialBosses},
		{groups.materials, &account.Materials},
		{groups.craftResources, &account.CraftResources},
	}
	for _, target := range targets {
		if len(target.data) == 0 {
			continue
		}
		if err := json.Unmarshal(target.data, target.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal counters: %w", err)
		}
	}

	return &account, nil
}
