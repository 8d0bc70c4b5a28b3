package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	staffingerrors "brigade/internal/staffing/errors"
	"brigade/internal/staffing/repository"
	"brigade/internal/staffing/validator"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	mongotx "brigade/pkg/db/mongo"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/logger"
	"brigade/pkg/model"
	"brigade/pkg/roster"
)

const (
	testEventID   = "64a0000000000000000000e1"
	testSessionID = "64a0000000000000000000a1"
	testRequestID = "64a0000000000000000000b1"
	testMemberID  = "64a0000000000000000000c1"
	testMember2ID = "64a0000000000000000000c2"
)

// Mock repositories for testing
type mockSessionRepository struct {
	createFunc      func(ctx context.Context, session *model.ConfirmationSession) error
	findByIDFunc    func(ctx context.Context, id string) (*model.ConfirmationSession, error)
	findByEventFunc func(ctx context.Context, eventID string) ([]*model.ConfirmationSession, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, session *model.ConfirmationSession) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	session.ID = testSessionID
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.ConfirmationSession, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, staffingerrors.ErrSessionNotFound
}

func (m *mockSessionRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.ConfirmationSession, error) {
	if m.findByEventFunc != nil {
		return m.findByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockRequestRepository struct {
	createManyFunc            func(ctx context.Context, requests []*model.ConfirmationRequest) error
	createFunc                func(ctx context.Context, request *model.ConfirmationRequest) error
	findByIDFunc              func(ctx context.Context, id string) (*model.ConfirmationRequest, error)
	findBySessionFunc         func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error)
	findByEventFunc           func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error)
	findPendingSentBeforeFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error)
	markSessionSentFunc       func(ctx context.Context, sessionID string, sentAt time.Time) (int64, error)
	decideIfStatusFunc        func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error
}

func (m *mockRequestRepository) CreateMany(ctx context.Context, requests []*model.ConfirmationRequest) error {
	if m.createManyFunc != nil {
		return m.createManyFunc(ctx, requests)
	}
	return nil
}

func (m *mockRequestRepository) Create(ctx context.Context, request *model.ConfirmationRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = testRequestID
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, staffingerrors.ErrRequestNotFound
}

func (m *mockRequestRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
	if m.findBySessionFunc != nil {
		return m.findBySessionFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
	if m.findByEventFunc != nil {
		return m.findByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindPendingSentBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error) {
	if m.findPendingSentBeforeFunc != nil {
		return m.findPendingSentBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *mockRequestRepository) MarkSessionSent(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
	if m.markSessionSentFunc != nil {
		return m.markSessionSentFunc(ctx, sessionID, sentAt)
	}
	return 0, nil
}

func (m *mockRequestRepository) DecideIfStatus(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
	if m.decideIfStatusFunc != nil {
		return m.decideIfStatusFunc(ctx, id, expected, decision)
	}
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
		GuestCount: 100,
		EventType:  "Mariage",
		Status:     model.EventConfirmed,
	}, nil
}

type mockMemberProvider struct {
	getByIDsFunc func(ctx context.Context, ids []string) ([]*model.TeamMember, error)
}

func (m *mockMemberProvider) GetByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, ids)
	}
	return nil, nil
}

type mockSettingsProvider struct {
	effectiveFunc func(ctx context.Context) (*model.StaffSettings, error)
}

func (m *mockSettingsProvider) Effective(ctx context.Context) (*model.StaffSettings, error) {
	if m.effectiveFunc != nil {
		return m.effectiveFunc(ctx)
	}
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
		AutoReplaceAfter: 48 * time.Hour,
	}, nil
}

type mockOutboundSender struct {
	sendInvitationsFunc func(ctx context.Context, session *model.ConfirmationSession, event *model.Event, requests []*model.ConfirmationRequest) error
}

func (m *mockOutboundSender) SendInvitations(ctx context.Context, session *model.ConfirmationSession, event *model.Event, requests []*model.ConfirmationRequest) error {
	if m.sendInvitationsFunc != nil {
		return m.sendInvitationsFunc(ctx, session, event, requests)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		SessionWindow: 7 * 24 * time.Hour,
		PublicBaseURL: "https://staffing.example.com",
	}
}

func newTestService(
	sessions *mockSessionRepository,
	requests *mockRequestRepository,
	events *mockEventProvider,
	members *mockMemberProvider,
	settings *mockSettingsProvider,
	outbound OutboundSender,
	clk clock.Clock,
) *staffingService {
	cfg := testConfig()
	return &staffingService{
		sessions:  sessions,
		requests:  requests,
		events:    events,
		members:   members,
		settings:  settings,
		outbound:  outbound,
		validator: validator.NewStaffingValidator(cfg.Log),
		clock:     clk,
		cfg:       cfg,
	}
}

func TestCreateSession_EmptyMemberList(t *testing.T) {
	service := newTestService(
		&mockSessionRepository{},
		&mockRequestRepository{},
		&mockEventProvider{},
		&mockMemberProvider{},
		&mockSettingsProvider{},
		nil,
		clock.At(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)),
	)

	_, _, err := service.CreateSession(context.Background(), testEventID, []string{})
	if err == nil {
		t.Fatal("expected validation error for empty member list, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestCreateSession_UnknownMembers(t *testing.T) {
	members := &mockMemberProvider{
		getByIDsFunc: func(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
			// Only one of the two requested members exists.
			return []*model.TeamMember{
				{ID: testMemberID, Name: "Marie Dubois", Role: "Serveuse", Phone: "+33612345678"},
			}, nil
		},
	}

	service := newTestService(
		&mockSessionRepository{},
		&mockRequestRepository{},
		&mockEventProvider{},
		members,
		&mockSettingsProvider{},
		nil,
		clock.At(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)),
	)

	_, _, err := service.CreateSession(context.Background(), testEventID, []string{testMemberID, testMember2ID})
	if err == nil {
		t.Fatal("expected error when a member ID does not resolve, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateSession_CreatesNotContactedRequests(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	var created []*model.ConfirmationRequest
	requests := &mockRequestRepository{
		createManyFunc: func(ctx context.Context, reqs []*model.ConfirmationRequest) error {
			created = reqs
			return nil
		},
	}
	members := &mockMemberProvider{
		getByIDsFunc: func(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
			return []*model.TeamMember{
				{ID: testMemberID, Name: "  Marie   Dubois ", Role: "Serveuse"},
				{ID: testMember2ID, Name: "Paul Martin", Role: "Chef de cuisine"},
			}, nil
		},
	}

	service := newTestService(
		&mockSessionRepository{},
		requests,
		&mockEventProvider{},
		members,
		&mockSettingsProvider{},
		nil,
		clock.At(now),
	)

	session, reqs, err := service.CreateSession(context.Background(), testEventID, []string{testMemberID, testMember2ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.ExpiresAt != now.Add(7*24*time.Hour) {
		t.Errorf("expected expiry %v, got %v", now.Add(7*24*time.Hour), session.ExpiresAt)
	}
	if len(reqs) != 2 || len(created) != 2 {
		t.Fatalf("expected 2 requests, got %d returned, %d created", len(reqs), len(created))
	}
	for _, req := range created {
		if req.Status != model.RequestNotContacted {
			t.Errorf("expected status %s, got %s", model.RequestNotContacted, req.Status)
		}
		if req.SessionID != session.ID {
			t.Errorf("request not bound to session: %s", req.SessionID)
		}
	}
	if created[0].MemberName != "Marie Dubois" {
		t.Errorf("expected normalized member name, got %q", created[0].MemberName)
	}
}

func TestSend_ExpiredSession(t *testing.T) {
	now := time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationSession, error) {
			return &model.ConfirmationSession{
				ID:        testSessionID,
				EventID:   testEventID,
				CreatedAt: now.Add(-8 * 24 * time.Hour),
				ExpiresAt: now.Add(-24 * time.Hour),
			}, nil
		},
	}

	service := newTestService(sessions, &mockRequestRepository{}, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(now))

	_, err := service.Send(context.Background(), testSessionID)
	if err == nil {
		t.Fatal("expected error sending an expired session, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeExpired {
		t.Errorf("expected code %s, got %s", apperrors.CodeExpired, apperrors.AsAppError(err).Code)
	}
}

func TestSend_NoOpWhenAllContacted(t *testing.T) {
	now := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationSession, error) {
			return &model.ConfirmationSession{ID: testSessionID, EventID: testEventID, CreatedAt: now, ExpiresAt: now.Add(7 * 24 * time.Hour)}, nil
		},
	}
	requests := &mockRequestRepository{
		markSessionSentFunc: func(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
			return 0, nil
		},
	}

	outboundCalled := false
	outbound := &mockOutboundSender{
		sendInvitationsFunc: func(ctx context.Context, session *model.ConfirmationSession, event *model.Event, reqs []*model.ConfirmationRequest) error {
			outboundCalled = true
			return nil
		},
	}

	service := newTestService(sessions, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, outbound, clock.At(now))

	marked, err := service.Send(context.Background(), testSessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 0 {
		t.Errorf("expected 0 marked, got %d", marked)
	}
	if outboundCalled {
		t.Error("outbound should not be called when nothing was marked")
	}
}

func TestSend_DispatchesOnlyFreshlyMarked(t *testing.T) {
	now := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	sessions := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationSession, error) {
			return &model.ConfirmationSession{ID: testSessionID, EventID: testEventID, CreatedAt: earlier, ExpiresAt: now.Add(5 * 24 * time.Hour)}, nil
		},
	}
	requests := &mockRequestRepository{
		markSessionSentFunc: func(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
			return 2, nil
		},
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: "64a0000000000000000000b1", Status: model.RequestPending, SentAt: &now},
				{ID: "64a0000000000000000000b2", Status: model.RequestPending, SentAt: &now},
				{ID: "64a0000000000000000000b3", Status: model.RequestPending, SentAt: &earlier},
			}, nil
		},
	}

	var dispatched []*model.ConfirmationRequest
	outbound := &mockOutboundSender{
		sendInvitationsFunc: func(ctx context.Context, session *model.ConfirmationSession, event *model.Event, reqs []*model.ConfirmationRequest) error {
			dispatched = reqs
			return nil
		},
	}

	service := newTestService(sessions, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, outbound, clock.At(now))

	marked, err := service.Send(context.Background(), testSessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 2 {
		t.Errorf("expected 2 marked, got %d", marked)
	}
	if len(dispatched) != 2 {
		t.Errorf("expected 2 invitations dispatched, got %d", len(dispatched))
	}
}

func TestRecordOperatorDecision_RepeatSameDecision(t *testing.T) {
	respondedAt := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)
	decideCalled := false
	requests := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			return &model.ConfirmationRequest{
				ID:          testRequestID,
				Status:      model.RequestConfirmed,
				Channel:     model.ChannelOperator,
				RespondedAt: &respondedAt,
			}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			decideCalled = true
			return nil
		},
	}

	service := newTestService(&mockSessionRepository{}, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(respondedAt.Add(time.Hour)))

	request, err := service.RecordOperatorDecision(context.Background(), testRequestID, model.RequestConfirmed)
	if err != nil {
		t.Fatalf("repeating the recorded decision must be a no-op, got: %v", err)
	}
	if decideCalled {
		t.Error("repository write must not happen for a repeated decision")
	}
	if request.RespondedAt == nil || !request.RespondedAt.Equal(respondedAt) {
		t.Error("original response timestamp must be preserved")
	}
}

func TestRecordOperatorDecision_ConflictingDecision(t *testing.T) {
	requests := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			return &model.ConfirmationRequest{ID: testRequestID, Status: model.RequestConfirmed}, nil
		},
	}

	service := newTestService(&mockSessionRepository{}, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	_, err := service.RecordOperatorDecision(context.Background(), testRequestID, model.RequestDeclined)
	if err == nil {
		t.Fatal("expected conflict when overwriting a recorded decision, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if appErr.Details["recorded_decision"] != model.RequestConfirmed {
		t.Errorf("expected recorded decision in details, got %v", appErr.Details)
	}
}

func TestRecordOperatorDecision_InvalidDecision(t *testing.T) {
	service := newTestService(&mockSessionRepository{}, &mockRequestRepository{}, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	_, err := service.RecordOperatorDecision(context.Background(), testRequestID, model.RequestPending)
	if err == nil {
		t.Fatal("expected validation error for non-terminal decision, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRecordOperatorDecision_LostRaceRereads(t *testing.T) {
	// First read sees pending; the guarded write loses to a concurrent
	// responder; the re-read sees the same decision already recorded.
	reads := 0
	requests := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			reads++
			if reads == 1 {
				return &model.ConfirmationRequest{ID: testRequestID, Status: model.RequestPending}, nil
			}
			return &model.ConfirmationRequest{ID: testRequestID, Status: model.RequestConfirmed}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			return staffingerrors.ErrStatusConflict
		},
	}

	service := newTestService(&mockSessionRepository{}, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	request, err := service.RecordOperatorDecision(context.Background(), testRequestID, model.RequestConfirmed)
	if err != nil {
		t.Fatalf("losing the race to the same decision must not error, got: %v", err)
	}
	if request.Status != model.RequestConfirmed {
		t.Errorf("expected confirmed after re-read, got %s", request.Status)
	}
}

func TestRespondPublic_SessionNotFound(t *testing.T) {
	service := newTestService(&mockSessionRepository{}, &mockRequestRepository{}, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	result, err := service.RespondPublic(context.Background(), testSessionID, "Marie", "Dubois", true)
	if err != nil {
		t.Fatalf("unknown session is an outcome, not an error: %v", err)
	}
	if result.Outcome != OutcomeNotFound {
		t.Errorf("expected outcome %s, got %s", OutcomeNotFound, result.Outcome)
	}
}

func TestRespondPublic_ExpiredSession(t *testing.T) {
	now := time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationSession, error) {
			return &model.ConfirmationSession{ID: testSessionID, EventID: testEventID, ExpiresAt: now}, nil
		},
	}

	service := newTestService(sessions, &mockRequestRepository{}, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(now))

	result, err := service.RespondPublic(context.Background(), testSessionID, "Marie", "Dubois", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeExpired {
		t.Errorf("a session expiring exactly now must be expired, got %s", result.Outcome)
	}
}

func respondPublicFixture(now time.Time, requests *mockRequestRepository) *staffingService {
	sessions := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationSession, error) {
			return &model.ConfirmationSession{ID: testSessionID, EventID: testEventID, ExpiresAt: now.Add(24 * time.Hour)}, nil
		},
	}
	return newTestService(sessions, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(now))
}

func TestRespondPublic_ExactNameBeatsSubstring(t *testing.T) {
	now := time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)

	var decidedID string
	requests := &mockRequestRepository{
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: "64a0000000000000000000b1", MemberName: "Marie-Claire Dubois", Status: model.RequestPending},
				{ID: "64a0000000000000000000b2", MemberName: "Marie", Status: model.RequestPending},
			}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			decidedID = id
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			return &model.ConfirmationRequest{ID: id, MemberName: "Marie", Status: model.RequestConfirmed, Channel: model.ChannelPublic, RespondedAt: &now}, nil
		},
	}

	service := respondPublicFixture(now, requests)

	result, err := service.RespondPublic(context.Background(), testSessionID, "marie", "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeConfirmed {
		t.Errorf("expected outcome %s, got %s", OutcomeConfirmed, result.Outcome)
	}
	if decidedID != "64a0000000000000000000b2" {
		t.Errorf("exact match must win over substring match, decided %s", decidedID)
	}
}

func TestRespondPublic_LastNameAloneMatches(t *testing.T) {
	now := time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)

	var decidedID string
	orphanCreated := false
	requests := &mockRequestRepository{
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: testRequestID, MemberName: "Martin Dupont", Status: model.RequestPending},
			}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			decidedID = id
			return nil
		},
		createFunc: func(ctx context.Context, request *model.ConfirmationRequest) error {
			orphanCreated = true
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			return &model.ConfirmationRequest{ID: id, MemberName: "Martin Dupont", Status: model.RequestConfirmed, Channel: model.ChannelPublic, RespondedAt: &now}, nil
		},
	}

	service := respondPublicFixture(now, requests)

	// "Alex Martin" shares only the last name with "Martin Dupont"; the
	// pending request must be the one answered, not a fresh orphan.
	result, err := service.RespondPublic(context.Background(), testSessionID, "Alex", "Martin", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeConfirmed {
		t.Errorf("expected outcome %s, got %s", OutcomeConfirmed, result.Outcome)
	}
	if decidedID != testRequestID {
		t.Errorf("expected the pending request to be decided, got %q", decidedID)
	}
	if orphanCreated {
		t.Error("a last-name match must not create an orphan request")
	}
}

func TestRespondPublic_AlreadyResponded(t *testing.T) {
	now := time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)
	firstAnswer := now.Add(-2 * time.Hour)

	decideCalled := false
	requests := &mockRequestRepository{
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: testRequestID, MemberName: "Marie Dubois", Status: model.RequestDeclined, RespondedAt: &firstAnswer},
			}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			decideCalled = true
			return nil
		},
	}

	service := respondPublicFixture(now, requests)

	result, err := service.RespondPublic(context.Background(), testSessionID, "Marie", "Dubois", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeAlreadyResponded {
		t.Errorf("expected outcome %s, got %s", OutcomeAlreadyResponded, result.Outcome)
	}
	if decideCalled {
		t.Error("a terminal request must never be rewritten")
	}
	if result.Request.RespondedAt == nil || !result.Request.RespondedAt.Equal(firstAnswer) {
		t.Error("the first answer's timestamp must be preserved")
	}
}

func TestRespondPublic_LostRaceReportsExistingAnswer(t *testing.T) {
	now := time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)

	requests := &mockRequestRepository{
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: testRequestID, MemberName: "Marie Dubois", Status: model.RequestPending},
			}, nil
		},
		decideIfStatusFunc: func(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
			return staffingerrors.ErrStatusConflict
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.ConfirmationRequest, error) {
			return &model.ConfirmationRequest{ID: testRequestID, MemberName: "Marie Dubois", Status: model.RequestConfirmed}, nil
		},
	}

	service := respondPublicFixture(now, requests)

	result, err := service.RespondPublic(context.Background(), testSessionID, "Marie", "Dubois", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeAlreadyResponded {
		t.Errorf("expected outcome %s, got %s", OutcomeAlreadyResponded, result.Outcome)
	}
	if result.Request.Status != model.RequestConfirmed {
		t.Errorf("expected the winning answer to be reported, got %s", result.Request.Status)
	}
}

func TestRespondPublic_UnknownNameCreatesOrphan(t *testing.T) {
	now := time.Date(2026, 6, 3, 10, 0, 0, 0, time.UTC)

	var orphan *model.ConfirmationRequest
	requests := &mockRequestRepository{
		findBySessionFunc: func(ctx context.Context, sessionID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: testRequestID, MemberName: "Paul Martin", Status: model.RequestPending},
			}, nil
		},
		createFunc: func(ctx context.Context, request *model.ConfirmationRequest) error {
			orphan = request
			request.ID = "64a0000000000000000000b9"
			return nil
		},
	}

	service := respondPublicFixture(now, requests)

	result, err := service.RespondPublic(context.Background(), testSessionID, "Sophie", "Bernard", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeConfirmed {
		t.Errorf("expected outcome %s, got %s", OutcomeConfirmed, result.Outcome)
	}
	if orphan == nil {
		t.Fatal("expected an orphan request to be created")
	}
	if orphan.Role != "extra" {
		t.Errorf("orphan requests land in the fallback role, got %q", orphan.Role)
	}
	if !orphan.Status.Terminal() {
		t.Errorf("orphan requests are born terminal, got %s", orphan.Status)
	}
	if orphan.TeamMemberID != "" {
		t.Errorf("orphan requests have no member ID, got %q", orphan.TeamMemberID)
	}
	if orphan.RespondedAt == nil || !orphan.RespondedAt.Equal(now) {
		t.Error("orphan requests carry the response timestamp")
	}
}

func TestRoster_ComputedFromRequests(t *testing.T) {
	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{Role: "Serveuse", Status: model.RequestConfirmed},
				{Role: "Serveur", Status: model.RequestConfirmed},
				{Role: "Serveur", Status: model.RequestPending},
				{Role: "Chef de cuisine", Status: model.RequestConfirmed},
				{Role: "Barman", Status: model.RequestDeclined},
			}, nil
		},
	}

	service := newTestService(&mockSessionRepository{}, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	view, err := service.Roster(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100 guests, wedding: servers ceil(100/25*1.2)=5, chefs ceil(100/60)=2,
	// bartenders ceil(100/80)=2, head waiter 1.
	if view.Requirement.Servers != 5 {
		t.Errorf("expected 5 servers needed, got %d", view.Requirement.Servers)
	}
	if view.Requirement.Chefs != 2 {
		t.Errorf("expected 2 chefs needed, got %d", view.Requirement.Chefs)
	}

	servers := view.Report.Roles[roster.RoleServers]
	if servers.Confirmed != 2 || servers.Missing != 3 {
		t.Errorf("expected 2 confirmed / 3 missing servers, got %d / %d", servers.Confirmed, servers.Missing)
	}
	bartenders := view.Report.Roles[roster.RoleBartenders]
	if bartenders.Confirmed != 0 {
		t.Errorf("declined answers must not count as confirmed, got %d", bartenders.Confirmed)
	}
}

func TestRoster_OverrideReplacesComputation(t *testing.T) {
	two, one := 2, 1
	events := &mockEventProvider{
		getByIDFunc: func(ctx context.Context, id string) (*model.Event, error) {
			return &model.Event{
				ID:         testEventID,
				Name:       "Cocktail d'entreprise",
				Date:       time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
				GuestCount: 300,
				EventType:  "Corporate",
				Status:     model.EventConfirmed,
				StaffOverride: &model.StaffOverride{
					Servers: &two,
					Chefs:   &one,
				},
			}, nil
		},
	}

	service := newTestService(&mockSessionRepository{}, &mockRequestRepository{}, events, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	view, err := service.Roster(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := roster.Requirement{Servers: 2, Chefs: 1, Bartenders: 0, HeadWaiter: 0}
	if view.Requirement != want {
		t.Errorf("override must replace the computation entirely, got %+v", view.Requirement)
	}
}

func TestRequirement_SkipsRequestLookup(t *testing.T) {
	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			t.Error("requirement must not read confirmation requests")
			return nil, nil
		},
	}

	service := newTestService(&mockSessionRepository{}, requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, nil, clock.At(time.Now()))

	view, err := service.Requirement(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := roster.Requirement{Servers: 5, Chefs: 2, Bartenders: 2, HeadWaiter: 1}
	if view.Requirement != want {
		t.Errorf("expected %+v, got %+v", want, view.Requirement)
	}
	if view.EventID != testEventID {
		t.Errorf("expected event ID %s, got %s", testEventID, view.EventID)
	}
}
