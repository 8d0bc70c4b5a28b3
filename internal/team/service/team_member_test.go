package service

import (
	"context"
	"testing"
	"time"

	teamerrors "brigade/internal/team/errors"
	"brigade/internal/team/validator"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/logger"
	"brigade/pkg/model"
)

const testMemberID = "64a0000000000000000000c1"

type mockTeamMemberRepository struct {
	createFunc    func(ctx context.Context, member *model.TeamMember) error
	findByIDFunc  func(ctx context.Context, id string) (*model.TeamMember, error)
	findByIDsFunc func(ctx context.Context, ids []string) ([]*model.TeamMember, error)
	findAllFunc   func(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, error)
	updateFunc    func(ctx context.Context, id string, member *model.TeamMember) error
	deleteFunc    func(ctx context.Context, id string) error
	countFunc     func(ctx context.Context) (int64, error)
}

func (m *mockTeamMemberRepository) Create(ctx context.Context, member *model.TeamMember) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, member)
	}
	member.ID = testMemberID
	return nil
}

func (m *mockTeamMemberRepository) FindByID(ctx context.Context, id string) (*model.TeamMember, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, teamerrors.ErrNotFound
}

func (m *mockTeamMemberRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockTeamMemberRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockTeamMemberRepository) Update(ctx context.Context, id string, member *model.TeamMember) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, member)
	}
	return nil
}

func (m *mockTeamMemberRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTeamMemberRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockTeamMemberRepository) *teamMemberService {
	cfg := testConfig()
	return &teamMemberService{
		repo:      repo,
		validator: validator.NewTeamMemberValidator(cfg.Log),
		cfg:       cfg,
	}
}

func TestCreate_NormalizesPhoneToE164(t *testing.T) {
	var created *model.TeamMember
	repo := &mockTeamMemberRepository{
		createFunc: func(ctx context.Context, member *model.TeamMember) error {
			created = member
			member.ID = testMemberID
			return nil
		},
	}
	service := newTestService(repo)

	err := service.Create(context.Background(), &model.TeamMember{
		Name:  " marie   dubois ",
		Phone: "06 12 34 56 78",
		Role:  "Serveuse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Phone != "+33612345678" {
		t.Errorf("expected E.164 phone, got %q", created.Phone)
	}
	if created.Name != "marie dubois" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
}

func TestCreate_RejectsUnparseablePhone(t *testing.T) {
	service := newTestService(&mockTeamMemberRepository{})

	err := service.Create(context.Background(), &model.TeamMember{
		Name:  "Marie Dubois",
		Phone: "12",
		Role:  "Serveuse",
	})
	if err == nil {
		t.Fatal("expected validation error for unparseable phone, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreate_PhoneIsOptional(t *testing.T) {
	repo := &mockTeamMemberRepository{}
	service := newTestService(repo)

	err := service.Create(context.Background(), &model.TeamMember{
		Name: "Paul Martin",
		Role: "Chef de cuisine",
	})
	if err != nil {
		t.Fatalf("members without a phone are allowed: %v", err)
	}
}

func TestGetByIDs_EmptyInput(t *testing.T) {
	called := false
	repo := &mockTeamMemberRepository{
		findByIDsFunc: func(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
			called = true
			return nil, nil
		},
	}
	service := newTestService(repo)

	members, err := service.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if members != nil {
		t.Errorf("expected nil result, got %v", members)
	}
	if called {
		t.Error("repository must not be hit for an empty ID list")
	}
}

func TestUpdate_MergesHourlyRate(t *testing.T) {
	existing := &model.TeamMember{
		ID:         testMemberID,
		Name:       "Marie Dubois",
		Phone:      "+33612345678",
		Role:       "Serveuse",
		HourlyRate: 15,
	}

	var updated *model.TeamMember
	repo := &mockTeamMemberRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.TeamMember, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, member *model.TeamMember) error {
			updated = member
			return nil
		},
	}
	service := newTestService(repo)

	rate := 18.5
	err := service.Update(context.Background(), testMemberID, &model.TeamMemberUpdate{
		HourlyRate: &rate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.HourlyRate != 18.5 {
		t.Errorf("expected hourly rate 18.5, got %v", updated.HourlyRate)
	}
	if updated.Name != "Marie Dubois" || updated.Phone != "+33612345678" {
		t.Errorf("untouched fields must survive the merge: %+v", updated)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockTeamMemberRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return teamerrors.ErrNotFound
		},
	}
	service := newTestService(repo)

	err := service.Delete(context.Background(), testMemberID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
