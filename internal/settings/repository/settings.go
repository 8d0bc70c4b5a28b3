package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	settingserrors "brigade/internal/settings/errors"
	"brigade/pkg/config"
	"brigade/pkg/model"
)

const (
	CollectionName = "StaffSettings"
)

type SettingsRepository interface {
	FindByAccount(ctx context.Context, accountID string) (*model.StaffSettings, error)
	Upsert(ctx context.Context, settings *model.StaffSettings) error
}

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSettingsRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSettingsRepository) FindByAccount(ctx context.Context, accountID string) (*model.StaffSettings, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var settings model.StaffSettings
	err := r.collection.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, settingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find staff settings: %w", err)
	}

	return &settings, nil
}

// Upsert writes the whole settings document keyed by account. There is one
// document per account, so a replace with upsert keeps the invariant.
func (r *mongoSettingsRepository) Upsert(ctx context.Context, settings *model.StaffSettings) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	settings.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"account_id": settings.AccountID}
	update := bson.M{
		"$set": bson.M{
			"account_id":         settings.AccountID,
			"ratios":             settings.Ratios,
			"auto_replace_after": settings.AutoReplaceAfter,
			"updated_at":         settings.UpdatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert staff settings: %w", err)
	}
	return nil
}
