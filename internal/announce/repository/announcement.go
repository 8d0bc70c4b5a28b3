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

	announceerrors "brigade/internal/announce/errors"
	"brigade/pkg/config"
	"brigade/pkg/model"
)

const (
	AnnouncementCollectionName = "Announcements"
	FormResponseCollectionName = "FormResponses"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	FindByID(ctx context.Context, id string) (*model.Announcement, error)
	FindByEvent(ctx context.Context, eventID string) ([]*model.Announcement, error)
	UpdateDraft(ctx context.Context, id string, body string, needs map[string]int) error
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	CreateResponse(ctx context.Context, response *model.FormResponse) error
	FindResponses(ctx context.Context, announcementID string) ([]*model.FormResponse, error)
}

type mongoAnnouncementRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	responses  *mongo.Collection
}

func NewMongoAnnouncementRepository(cfg *config.Config) AnnouncementRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAnnouncementRepository{
		cfg:        cfg,
		collection: db.Collection(AnnouncementCollectionName),
		responses:  db.Collection(FormResponseCollectionName),
	}
}

func (r *mongoAnnouncementRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAnnouncementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	announcement.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, announcement)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		announcement.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAnnouncementRepository) FindByID(ctx context.Context, id string) (*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", announceerrors.ErrInvalidID, id)
	}

	var announcement model.Announcement
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&announcement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, announceerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}

	return &announcement, nil
}

func (r *mongoAnnouncementRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find announcements: %w", err)
	}
	defer cursor.Close(ctx)

	var announcements []*model.Announcement
	if err = cursor.All(ctx, &announcements); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}

	return announcements, nil
}

// UpdateDraft rewrites a draft's body and needs snapshot. The status guard
// keeps a sent announcement immutable.
func (r *mongoAnnouncementRepository) UpdateDraft(ctx context.Context, id string, body string, needs map[string]int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", announceerrors.ErrInvalidID, id)
	}

	set := bson.M{"body": body}
	if needs != nil {
		set["staff_needs"] = needs
	}

	filter := bson.M{
		"_id":    objectID,
		"status": model.AnnouncementDraft,
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if result.MatchedCount == 0 {
		return announceerrors.ErrAlreadySent
	}
	return nil
}

// MarkSent flips a draft to sent. The status guard keeps a double publish
// from rewriting sent_at.
func (r *mongoAnnouncementRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", announceerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":    objectID,
		"status": model.AnnouncementDraft,
	}
	update := bson.M{
		"$set": bson.M{
			"status":  model.AnnouncementSent,
			"sent_at": sentAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark announcement sent: %w", err)
	}
	if result.MatchedCount == 0 {
		return announceerrors.ErrAlreadySent
	}
	return nil
}

func (r *mongoAnnouncementRepository) CreateResponse(ctx context.Context, response *model.FormResponse) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.responses.InsertOne(ctx, response)
	if err != nil {
		return fmt.Errorf("failed to create form response: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		response.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAnnouncementRepository) FindResponses(ctx context.Context, announcementID string) ([]*model.FormResponse, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})

	cursor, err := r.responses.Find(ctx, bson.M{"announcement_id": announcementID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find form responses: %w", err)
	}
	defer cursor.Close(ctx)

	var responses []*model.FormResponse
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode form responses: %w", err)
	}

	return responses, nil
}
