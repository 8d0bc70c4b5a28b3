package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	teamerrors "brigade/internal/team/errors"
	"brigade/pkg/config"
	"brigade/pkg/model"
)

const (
	CollectionName = "TeamMembers"
)

type TeamMemberRepository interface {
	Create(ctx context.Context, member *model.TeamMember) error
	FindByID(ctx context.Context, id string) (*model.TeamMember, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, error)
	Update(ctx context.Context, id string, member *model.TeamMember) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mongoTeamMemberRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTeamMemberRepository(cfg *config.Config) TeamMemberRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTeamMemberRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTeamMemberRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTeamMemberRepository) Create(ctx context.Context, member *model.TeamMember) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	member.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		member.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTeamMemberRepository) FindByID(ctx context.Context, id string) (*model.TeamMember, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", teamerrors.ErrInvalidID, id)
	}

	var member model.TeamMember
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, teamerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}

	return &member, nil
}

func (r *mongoTeamMemberRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", teamerrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, objectID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find team members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*model.TeamMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode team members: %w", err)
	}

	return members, nil
}

func (r *mongoTeamMemberRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find team members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*model.TeamMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode team members: %w", err)
	}

	return members, nil
}

func (r *mongoTeamMemberRepository) Update(ctx context.Context, id string, member *model.TeamMember) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", teamerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        member.Name,
			"phone":       member.Phone,
			"role":        member.Role,
			"hourly_rate": member.HourlyRate,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update team member: %w", err)
	}
	if result.MatchedCount == 0 {
		return teamerrors.ErrNotFound
	}
	return nil
}

func (r *mongoTeamMemberRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", teamerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}
	if result.DeletedCount == 0 {
		return teamerrors.ErrNotFound
	}
	return nil
}

func (r *mongoTeamMemberRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}
