package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	announceerrors "brigade/internal/announce/errors"
	staffingrepo "brigade/internal/staffing/repository"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/logger"
	"brigade/pkg/model"
	"brigade/pkg/roster"
)

const (
	testEventID        = "64a0000000000000000000e1"
	testAnnouncementID = "64a0000000000000000000f1"
)

type mockAnnouncementRepository struct {
	createFunc         func(ctx context.Context, announcement *model.Announcement) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Announcement, error)
	findByEventFunc    func(ctx context.Context, eventID string) ([]*model.Announcement, error)
	updateDraftFunc    func(ctx context.Context, id string, body string, needs map[string]int) error
	markSentFunc       func(ctx context.Context, id string, sentAt time.Time) error
	createResponseFunc func(ctx context.Context, response *model.FormResponse) error
	findResponsesFunc  func(ctx context.Context, announcementID string) ([]*model.FormResponse, error)
}

func (m *mockAnnouncementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, announcement)
	}
	announcement.ID = testAnnouncementID
	return nil
}

func (m *mockAnnouncementRepository) FindByID(ctx context.Context, id string) (*model.Announcement, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, announceerrors.ErrNotFound
}

func (m *mockAnnouncementRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.Announcement, error) {
	if m.findByEventFunc != nil {
		return m.findByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockAnnouncementRepository) UpdateDraft(ctx context.Context, id string, body string, needs map[string]int) error {
	if m.updateDraftFunc != nil {
		return m.updateDraftFunc(ctx, id, body, needs)
	}
	return nil
}

func (m *mockAnnouncementRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, sentAt)
	}
	return nil
}

func (m *mockAnnouncementRepository) CreateResponse(ctx context.Context, response *model.FormResponse) error {
	if m.createResponseFunc != nil {
		return m.createResponseFunc(ctx, response)
	}
	return nil
}

func (m *mockAnnouncementRepository) FindResponses(ctx context.Context, announcementID string) ([]*model.FormResponse, error) {
	if m.findResponsesFunc != nil {
		return m.findResponsesFunc(ctx, announcementID)
	}
	return nil, nil
}

type mockRequestRepository struct {
	findByEventFunc func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error)
}

func (m *mockRequestRepository) CreateMany(ctx context.Context, requests []*model.ConfirmationRequest) error {
	return nil
}

func (m *mockRequestRepository) Create(ctx context.Context, request *model.ConfirmationRequest) error {
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
	return nil, nil
}

func (m *mockRequestRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
	return nil, nil
}

func (m *mockRequestRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
	if m.findByEventFunc != nil {
		return m.findByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindPendingSentBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error) {
	return nil, nil
}

func (m *mockRequestRepository) MarkSessionSent(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepository) DecideIfStatus(ctx context.Context, id string, expected model.RequestStatus, decision staffingrepo.RequestDecision) error {
	return nil
}

type mockEventProvider struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Event, error)
}

func (m *mockEventProvider) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Event{
		ID:         testEventID,
		Name:       "Mariage Dupont",
		Date:       time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC),
		Venue:      "Château de Vaux",
		GuestCount: 100,
		EventType:  "Mariage",
		Status:     model.EventConfirmed,
	}, nil
}

type mockSettingsProvider struct{}

func (m *mockSettingsProvider) Effective(ctx context.Context) (*model.StaffSettings, error) {
	return &model.StaffSettings{
		AccountID: "default",
		Ratios: roster.RatioSettings{
			GuestsPerServer:    25,
			GuestsPerChef:      60,
			GuestsPerBartender: 80,
			HeadWaiterEnabled:  true,
			WeddingCoeff:       1.2,
			CorporateCoeff:     1.0,
			BirthdayCoeff:      1.0,
		},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func newTestService(repo *mockAnnouncementRepository, requests *mockRequestRepository, events *mockEventProvider, clk clock.Clock) *announcementService {
	return &announcementService{
		repo:     repo,
		requests: requests,
		events:   events,
		settings: &mockSettingsProvider{},
		validate: validator.New(),
		clock:    clk,
		cfg:      testConfig(),
	}
}

func TestGenerate_SnapshotsMissingRoles(t *testing.T) {
	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{Role: "Serveur", Status: model.RequestConfirmed},
				{Role: "Serveur", Status: model.RequestConfirmed},
				{Role: "Serveur", Status: model.RequestConfirmed},
				{Role: "Chef de cuisine", Status: model.RequestConfirmed},
				{Role: "Chef de cuisine", Status: model.RequestConfirmed},
				{Role: "Barman", Status: model.RequestConfirmed},
				{Role: "Barman", Status: model.RequestConfirmed},
				{Role: "Maître d'hôtel", Status: model.RequestConfirmed},
			}, nil
		},
	}

	service := newTestService(&mockAnnouncementRepository{}, requests, &mockEventProvider{}, clock.At(time.Now()))

	// 100-guest wedding: 5 servers, 2 chefs, 2 bartenders, 1 head waiter
	// needed. Everything but servers is covered.
	announcement, err := service.Generate(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if announcement.Status != model.AnnouncementDraft {
		t.Errorf("expected draft status, got %s", announcement.Status)
	}
	if len(announcement.StaffNeeds) != 1 {
		t.Fatalf("expected one missing role, got %v", announcement.StaffNeeds)
	}
	if announcement.StaffNeeds["servers"] != 2 {
		t.Errorf("expected 2 missing servers, got %d", announcement.StaffNeeds["servers"])
	}

	if !strings.Contains(announcement.Body, "2 serveurs") {
		t.Errorf("body must cite the missing headcount, got: %s", announcement.Body)
	}
	if !strings.Contains(announcement.Body, "20/06/2026") {
		t.Errorf("body must cite the event date, got: %s", announcement.Body)
	}
	if !strings.Contains(announcement.Body, "Château de Vaux") {
		t.Errorf("body must cite the venue when present, got: %s", announcement.Body)
	}
}

func TestGenerate_FullyStaffedIsConflict(t *testing.T) {
	events := &mockEventProvider{
		getByIDFunc: func(ctx context.Context, id string) (*model.Event, error) {
			zero := 0
			return &model.Event{
				ID:         testEventID,
				Name:       "Petit comité",
				Date:       time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC),
				GuestCount: 10,
				EventType:  "Corporate",
				Status:     model.EventConfirmed,
				StaffOverride: &model.StaffOverride{
					Servers: &zero,
					Chefs:   &zero,
				},
			}, nil
		},
	}

	service := newTestService(&mockAnnouncementRepository{}, &mockRequestRepository{}, events, clock.At(time.Now()))

	_, err := service.Generate(context.Background(), testEventID)
	if err == nil {
		t.Fatal("expected conflict for a fully staffed event, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUpdate_EditsDraftBody(t *testing.T) {
	stored := &model.Announcement{
		ID:         testAnnouncementID,
		EventID:    testEventID,
		Body:       "Nous recherchons 2 serveurs.",
		StaffNeeds: map[string]int{"servers": 2},
		Status:     model.AnnouncementDraft,
	}

	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return stored, nil
		},
		updateDraftFunc: func(ctx context.Context, id string, body string, needs map[string]int) error {
			stored.Body = body
			if needs != nil {
				stored.StaffNeeds = needs
			}
			return nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	newBody := "  Nous recherchons  3 serveurs. "
	updated, err := service.Update(context.Background(), testAnnouncementID, &model.AnnouncementUpdate{
		Body:       &newBody,
		StaffNeeds: map[string]int{"servers": 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Body != "Nous recherchons 3 serveurs." {
		t.Errorf("expected the edited body to be normalized and saved, got %q", updated.Body)
	}
	if updated.StaffNeeds["servers"] != 3 {
		t.Errorf("expected the needs snapshot to be re-saved, got %v", updated.StaffNeeds)
	}
}

func TestUpdate_SentIsConflict(t *testing.T) {
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	body := "edited after the fact"
	_, err := service.Update(context.Background(), testAnnouncementID, &model.AnnouncementUpdate{Body: &body})
	if err == nil {
		t.Fatal("expected conflict when editing a sent announcement, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestPublish_TwiceIsConflict(t *testing.T) {
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
		markSentFunc: func(ctx context.Context, id string, sentAt time.Time) error {
			return announceerrors.ErrAlreadySent
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	_, err := service.Publish(context.Background(), testAnnouncementID)
	if err == nil {
		t.Fatal("expected conflict on double publish, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestSubmitResponse_NormalizesAndStamps(t *testing.T) {
	now := time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC)

	var stored *model.FormResponse
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
		createResponseFunc: func(ctx context.Context, response *model.FormResponse) error {
			stored = response
			return nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(now))

	err := service.SubmitResponse(context.Background(), testAnnouncementID, &model.FormResponse{
		Name:      "  sophie   bernard ",
		Phone:     "06 12 34 56 78",
		Role:      " Serveuse ",
		Available: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected the response to be stored")
	}
	if stored.Name != "sophie bernard" {
		t.Errorf("expected normalized name, got %q", stored.Name)
	}
	if stored.Phone != "+33612345678" {
		t.Errorf("expected E.164 phone, got %q", stored.Phone)
	}
	if stored.AnnouncementID != testAnnouncementID {
		t.Errorf("response must be bound to the announcement, got %q", stored.AnnouncementID)
	}
	if !stored.SubmittedAt.Equal(now) {
		t.Errorf("expected submission timestamp %v, got %v", now, stored.SubmittedAt)
	}
}

func TestSubmitResponse_RejectsBadPhone(t *testing.T) {
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	err := service.SubmitResponse(context.Background(), testAnnouncementID, &model.FormResponse{
		Name:      "Sophie Bernard",
		Phone:     "not a phone",
		Role:      "Serveuse",
		Available: true,
	})
	if err == nil {
		t.Fatal("expected validation error for unparseable phone, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmitResponse_PhoneRequiredWhenAvailable(t *testing.T) {
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	err := service.SubmitResponse(context.Background(), testAnnouncementID, &model.FormResponse{
		Name:      "Sophie Bernard",
		Role:      "Serveuse",
		Available: true,
	})
	if err == nil {
		t.Fatal("an available applicant without a callback number must be rejected")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmitResponse_PhoneOptionalWhenUnavailable(t *testing.T) {
	var stored *model.FormResponse
	repo := &mockAnnouncementRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Announcement, error) {
			return &model.Announcement{ID: testAnnouncementID, EventID: testEventID, Status: model.AnnouncementSent}, nil
		},
		createResponseFunc: func(ctx context.Context, response *model.FormResponse) error {
			stored = response
			return nil
		},
	}

	service := newTestService(repo, &mockRequestRepository{}, &mockEventProvider{}, clock.At(time.Now()))

	err := service.SubmitResponse(context.Background(), testAnnouncementID, &model.FormResponse{
		Name: "Sophie Bernard",
		Role: "Serveuse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.Available {
		t.Errorf("expected an unavailable response to be stored as-is, got %+v", stored)
	}
}
