// Package mongostore keeps accounts and the price table in the MongoDB
// collections "accounts" and "boss_prices".
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mir4tracker/models"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection = "accounts"
	pricesCollection   = "boss_prices"
	connectTimeout     = 10 * time.Second
	maxUpdateAttempts  = 3
)

// withoutObjectID hides the driver-generated _id from decoded records
var withoutObjectID = bson.D{{Key: "_id", Value: 0}}

// Store wraps a MongoDB client and database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies connectivity and ensures indexes
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	store := &Store{client: client, db: client.Database(dbName)}
	if err := store.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", dbName).Info("Connected to MongoDB")
	return store, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Accounts returns the account record store
func (s *Store) Accounts() *AccountStore {
	return &AccountStore{coll: s.db.Collection(accountsCollection)}
}

// Prices returns the price table store
func (s *Store) Prices() *PriceStore {
	return &PriceStore{coll: s.db.Collection(pricesCollection)}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(accountsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "confirmed", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

// AccountStore implements the account record store on a MongoDB collection
type AccountStore struct {
	coll *mongo.Collection
}

// GetByID returns the account, or nil when absent
func (s *AccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(withoutObjectID)).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return &account, nil
}

// GetAll returns up to limit accounts ordered by creation time
func (s *AccountStore) GetAll(ctx context.Context, limit int) ([]*models.Account, error) {
	opts := options.Find().
		SetProjection(withoutObjectID).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, bson.M{}, opts)
}

// GetConfirmed returns accounts that are confirmed and carry a confirmation timestamp
func (s *AccountStore) GetConfirmed(ctx context.Context) ([]*models.Account, error) {
	filter := bson.M{
		"confirmed":    true,
		"confirmed_at": bson.M{"$ne": nil},
	}
	return s.find(ctx, filter, options.Find().SetProjection(withoutObjectID))
}

// Create inserts a new account document
func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	if _, err := s.coll.InsertOne(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update reads the document, applies mutate and replaces it. The replace is
// conditioned on the document being unchanged since it was read and retried
// when another writer got there first.
func (s *AccountStore) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		// the raw document keeps stored field order, so it matches itself as a filter
		raw, err := s.coll.FindOne(ctx, bson.M{"id": id}).Raw()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get account %s: %w", id, err)
		}

		var account models.Account
		if err := bson.Unmarshal(raw, &account); err != nil {
			return nil, fmt.Errorf("failed to decode account %s: %w", id, err)
		}

		if err := mutate(&account); err != nil {
			return nil, err
		}
		account.ID = id

		result, err := s.coll.ReplaceOne(ctx, raw, &account)
		if err != nil {
			return nil, fmt.Errorf("failed to update account %s: %w", id, err)
		}
		if result.MatchedCount == 1 {
			return &account, nil
		}

		log.WithFields(log.Fields{
			"accountID": id,
			"attempt":   attempt,
		}).Debug("Account changed during update, retrying")
	}

	return nil, fmt.Errorf("failed to update account %s: concurrent modification", id)
}

// Delete removes an account document and returns the deleted count
func (s *AccountStore) Delete(ctx context.Context, id string) (int64, error) {
	result, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return result.DeletedCount, nil
}

func (s *AccountStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Account, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*models.Account
	for cur.Next(ctx) {
		var account models.Account
		if err := cur.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// PriceStore implements the singleton price table on a MongoDB collection
type PriceStore struct {
	coll *mongo.Collection
}

// Get returns the price table, or nil when it has not been provisioned
func (s *PriceStore) Get(ctx context.Context) (*models.BossPrices, error) {
	var prices models.BossPrices
	err := s.coll.FindOne(ctx, bson.M{"id": models.DefaultPricesID}, options.FindOne().SetProjection(withoutObjectID)).Decode(&prices)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boss prices: %w", err)
	}
	return &prices, nil
}

// Upsert replaces the price table document, creating it when absent
func (s *PriceStore) Upsert(ctx context.Context, prices *models.BossPrices) error {
	stored := prices.Clone()
	stored.ID = models.DefaultPricesID

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"id": models.DefaultPricesID},
		stored,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert boss prices: %w", err)
	}
	return nil
}
