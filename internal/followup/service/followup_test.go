package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"brigade/internal/staffing/repository"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	"brigade/pkg/kafka"
	"brigade/pkg/logger"
	"brigade/pkg/model"
	"brigade/pkg/roster"
)

const (
	testEventID   = "64a0000000000000000000e1"
	testSessionID = "64a0000000000000000000a1"
	testMemberID  = "64a0000000000000000000c1"
	testMember2ID = "64a0000000000000000000c2"
)

type mockRequestRepository struct {
	findByEventFunc           func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error)
	findPendingSentBeforeFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error)
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
	if m.findPendingSentBeforeFunc != nil {
		return m.findPendingSentBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *mockRequestRepository) MarkSessionSent(ctx context.Context, sessionID string, sentAt time.Time) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepository) DecideIfStatus(ctx context.Context, id string, expected model.RequestStatus, decision repository.RequestDecision) error {
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

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
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
		PublicBaseURL: "https://staffing.example.com",
	}
}

func newTestService(
	requests *mockRequestRepository,
	events *mockEventProvider,
	members *mockMemberProvider,
	settings *mockSettingsProvider,
	publisher *mockPublisher,
	clk clock.Clock,
) *followUpService {
	return &followUpService{
		requests:  requests,
		events:    events,
		members:   members,
		settings:  settings,
		publisher: publisher,
		clock:     clk,
		cfg:       testConfig(),
	}
}

func TestSendInvitations_SkipsMembersWithoutPhone(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	members := &mockMemberProvider{
		getByIDsFunc: func(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
			return []*model.TeamMember{
				{ID: testMemberID, Name: "Marie Dubois", Phone: "+33612345678"},
				{ID: testMember2ID, Name: "Paul Martin", Phone: ""},
			}, nil
		},
	}
	publisher := &mockPublisher{}
	service := newTestService(&mockRequestRepository{}, &mockEventProvider{}, members, &mockSettingsProvider{}, publisher, clock.At(now))

	session := &model.ConfirmationSession{ID: testSessionID, EventID: testEventID}
	event := &model.Event{ID: testEventID, Date: time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)}
	requests := []*model.ConfirmationRequest{
		{ID: "64a0000000000000000000b1", TeamMemberID: testMemberID, MemberName: "Marie Dubois"},
		{ID: "64a0000000000000000000b2", TeamMemberID: testMember2ID, MemberName: "Paul Martin"},
	}

	if err := service.SendInvitations(context.Background(), session, event, requests); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 queued invitation, got %d", len(publisher.published))
	}

	msg := publisher.published[0]
	if msg.Key != testEventID {
		t.Errorf("messages are keyed by event ID, got %q", msg.Key)
	}
	if msg.Headers[kafka.HeaderEventType] != string(model.OutboundInvitation) {
		t.Errorf("expected event type %s, got %s", model.OutboundInvitation, msg.Headers[kafka.HeaderEventType])
	}

	var payload model.OutboundMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.ToPhone != "+33612345678" {
		t.Errorf("expected Marie's phone, got %s", payload.ToPhone)
	}
	if !strings.Contains(payload.Body, "20/06/2026") {
		t.Errorf("invitation must cite the event date, got: %s", payload.Body)
	}
	if !strings.Contains(payload.Body, "https://staffing.example.com/respond/"+testSessionID) {
		t.Errorf("invitation must carry the response link, got: %s", payload.Body)
	}
}

func TestPreview_TierFollowsOldestPendingRequest(t *testing.T) {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)
	sent30hAgo := now.Add(-30 * time.Hour)
	sent13hAgo := now.Add(-13 * time.Hour)

	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: "64a0000000000000000000b1", Role: "Serveur", Status: model.RequestConfirmed},
				{ID: "64a0000000000000000000b2", Role: "Serveuse", Status: model.RequestPending, SentAt: &sent30hAgo, TeamMemberID: testMemberID},
				{ID: "64a0000000000000000000b3", Role: "Serveur", Status: model.RequestPending, SentAt: &sent13hAgo, TeamMemberID: testMember2ID},
			}, nil
		},
	}

	service := newTestService(requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, &mockPublisher{}, clock.At(now))

	followUps, err := service.Preview(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var servers *RoleFollowUp
	for i := range followUps {
		if followUps[i].FollowUp.Role == roster.RoleServers {
			servers = &followUps[i]
		}
		if followUps[i].FollowUp.Missing == 0 {
			t.Errorf("fully staffed role %s must not get a follow-up", followUps[i].FollowUp.Role)
		}
	}
	if servers == nil {
		t.Fatal("expected a follow-up for the servers gap")
	}

	// 100-guest wedding needs 5 servers, 1 confirmed: 4 missing. The oldest
	// pending request is 30h old, so the whole role escalates to urgent.
	if servers.FollowUp.Missing != 4 {
		t.Errorf("expected 4 missing servers, got %d", servers.FollowUp.Missing)
	}
	if servers.FollowUp.Tier != roster.TierUrgent {
		t.Errorf("expected tier %s, got %s", roster.TierUrgent, servers.FollowUp.Tier)
	}
	if len(servers.Pending) != 2 {
		t.Errorf("expected 2 pending recipients, got %d", len(servers.Pending))
	}
}

func TestPreview_RoleWithoutPendingStaysNeutral(t *testing.T) {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)

	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			return nil, nil
		},
	}

	service := newTestService(requests, &mockEventProvider{}, &mockMemberProvider{}, &mockSettingsProvider{}, &mockPublisher{}, clock.At(now))

	followUps, err := service.Preview(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, fu := range followUps {
		if fu.FollowUp.Tier != roster.TierNeutral {
			t.Errorf("role %s has no pending requests, expected neutral tier, got %s", fu.FollowUp.Role, fu.FollowUp.Tier)
		}
		if !strings.Contains(fu.FollowUp.Message, roster.LinkPlaceholder) {
			t.Errorf("preview keeps the link placeholder, got: %s", fu.FollowUp.Message)
		}
	}
}

func TestDispatch_SubstitutesLinkAndCounts(t *testing.T) {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)
	sent20hAgo := now.Add(-20 * time.Hour)

	requests := &mockRequestRepository{
		findByEventFunc: func(ctx context.Context, eventID string) ([]*model.ConfirmationRequest, error) {
			return []*model.ConfirmationRequest{
				{ID: "64a0000000000000000000b1", SessionID: testSessionID, Role: "Serveur", Status: model.RequestPending, SentAt: &sent20hAgo, TeamMemberID: testMemberID, MemberName: "Marie Dubois"},
				{ID: "64a0000000000000000000b2", SessionID: testSessionID, Role: "Serveur", Status: model.RequestPending, SentAt: &sent20hAgo, TeamMemberID: testMember2ID, MemberName: "Paul Martin"},
			}, nil
		},
	}
	members := &mockMemberProvider{
		getByIDsFunc: func(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
			return []*model.TeamMember{
				{ID: testMemberID, Name: "Marie Dubois", Phone: "+33612345678"},
				{ID: testMember2ID, Name: "Paul Martin", Phone: ""},
			}, nil
		},
	}
	publisher := &mockPublisher{}

	service := newTestService(requests, &mockEventProvider{}, members, &mockSettingsProvider{}, publisher, clock.At(now))

	queued, err := service.Dispatch(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 1 {
		t.Errorf("expected 1 queued follow-up (Paul has no phone), got %d", queued)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(publisher.published))
	}

	var payload model.OutboundMessage
	if err := json.Unmarshal(publisher.published[0].Value, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if strings.Contains(payload.Body, roster.LinkPlaceholder) {
		t.Errorf("dispatch must substitute the link placeholder, got: %s", payload.Body)
	}
	if !strings.Contains(payload.Body, "https://staffing.example.com/respond/"+testSessionID) {
		t.Errorf("follow-up must carry the response link, got: %s", payload.Body)
	}
	if payload.Kind != model.OutboundFollowUp {
		t.Errorf("expected kind %s, got %s", model.OutboundFollowUp, payload.Kind)
	}
}

func TestDispatch_NothingMissing(t *testing.T) {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)

	events := &mockEventProvider{
		getByIDFunc: func(ctx context.Context, id string) (*model.Event, error) {
			// Zero guests and no head waiter: nothing to staff.
			return &model.Event{ID: testEventID, Date: now, GuestCount: 0, EventType: "Corporate", Status: model.EventConfirmed}, nil
		},
	}
	settings := &mockSettingsProvider{
		effectiveFunc: func(ctx context.Context) (*model.StaffSettings, error) {
			return &model.StaffSettings{
				AccountID:        "default",
				Ratios:           roster.RatioSettings{GuestsPerServer: 25, GuestsPerChef: 60, GuestsPerBartender: 80},
				AutoReplaceAfter: 48 * time.Hour,
			}, nil
		},
	}
	publisher := &mockPublisher{}

	service := newTestService(&mockRequestRepository{}, events, &mockMemberProvider{}, settings, publisher, clock.At(now))

	queued, err := service.Dispatch(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 0 {
		t.Errorf("expected nothing queued, got %d", queued)
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no messages, got %d", len(publisher.published))
	}
}

func TestReplaceable_UsesSettingsWindow(t *testing.T) {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)

	var gotCutoff time.Time
	var gotLimit int
	requests := &mockRequestRepository{
		findPendingSentBeforeFunc: func(ctx context.Context, cutoff time.Time, limit int) ([]*model.ConfirmationRequest, error) {
			gotCutoff = cutoff
			gotLimit = limit
			return []*model.ConfirmationRequest{{ID: "64a0000000000000000000b1"}}, nil
		},
	}
	settings := &mockSettingsProvider{
		effectiveFunc: func(ctx context.Context) (*model.StaffSettings, error) {
			return &model.StaffSettings{
				AccountID:        "default",
				Ratios:           roster.RatioSettings{GuestsPerServer: 25, GuestsPerChef: 60, GuestsPerBartender: 80},
				AutoReplaceAfter: 36 * time.Hour,
			}, nil
		},
	}

	service := newTestService(requests, &mockEventProvider{}, &mockMemberProvider{}, settings, &mockPublisher{}, clock.At(now))

	stale, err := service.Replaceable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stale) != 1 {
		t.Errorf("expected 1 stale request, got %d", len(stale))
	}
	if want := now.Add(-36 * time.Hour); !gotCutoff.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, gotCutoff)
	}
	if gotLimit != 100 {
		t.Errorf("expected limit 100, got %d", gotLimit)
	}
}
