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

	staffingerrors "brigade/internal/staffing/errors"
	"brigade/pkg/config"
	"brigade/pkg/model"
)

const (
	RequestCollectionName = "ConfirmationRequests"
)

// RequestDecision carries the fields written when a request reaches a
// terminal status.
type RequestDecision struct {
	Status      model.RequestStatus
	Channel     model.ResponseChannel
	RespondedAt time.Time
}

type RequestRepository interface {
	CreateMany(ctx context.Context, requests []*model.ConfirmationRequest) error
	Create(ctx context.Context, request *model.ConfirmationRequest) error
	FindByID(ctx context.Context, id string) (*model.ConfirmationRequest, error)
	FindBySession(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error)
	FindByEvent(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error)
	FindPendingSentBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error)
	MarkSessionSent(ctx context.Context, sessionID string, sentAt time.Time) (int64, error)
	DecideIfStatus(ctx context.Context, id string, expected model.RequestStatus, decision RequestDecision) error
}

type mongoRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		collection: db.Collection(RequestCollectionName),
	}
}

func (r *mongoRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRequestRepository) CreateMany(ctx context.Context, requests []*model.ConfirmationRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(requests))
	for _, req := range requests {
		docs = append(docs, req)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create confirmation requests: %w", err)
	}

	for i, insertedID := range result.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok && i < len(requests) {
			requests[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.ConfirmationRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create confirmation request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", staffingerrors.ErrInvalidID, id)
	}

	var request model.ConfirmationRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, staffingerrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find confirmation request: %w", err)
	}

	return &request, nil
}

func (r *mongoRequestRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
	return r.findAll(ctx, bson.M{"session_id": sessionID})
}

func (r *mongoRequestRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
	return r.findAll(ctx, bson.M{"event_id": eventID})
}

func (r *mongoRequestRepository) findAll(ctx context.Context, filter bson.M) ([]*model.ConfirmationRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "member_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find confirmation requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ConfirmationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) FindPendingSentBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":  model.RequestPending,
		"sent_at": bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pending requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ConfirmationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode stale pending requests: %w", err)
	}

	return requests, nil
}

// MarkSessionSent flips every not_contacted request of the session to pending
// and stamps sent_at. Requests already pending or answered are untouched, so
// re-sending a session is harmless.
func (r *mongoRequestRepository) MarkSessionSent(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"session_id": sessionID,
		"status":     model.RequestNotContacted,
	}
	update := bson.M{
		"$set": bson.M{
			"status":  model.RequestPending,
			"sent_at": sentAt,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark session sent: %w", err)
	}
	return result.ModifiedCount, nil
}

// DecideIfStatus records a terminal decision only when the request is still in
// the expected status. The status guard in the filter makes concurrent
// responses race-safe: exactly one writer matches, the rest get
// ErrStatusConflict and must re-read.
func (r *mongoRequestRepository) DecideIfStatus(ctx context.Context, id string, expected model.RequestStatus, decision RequestDecision) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", staffingerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":    objectID,
		"status": expected,
	}
	update := bson.M{
		"$set": bson.M{
			"status":       decision.Status,
			"channel":      decision.Channel,
			"responded_at": decision.RespondedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	if result.MatchedCount == 0 {
		return staffingerrors.ErrStatusConflict
	}
	return nil
}
