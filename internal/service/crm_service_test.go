package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubClientRepo struct {
	clients []*model.Client
}

func (r *stubClientRepo) Create(_ context.Context, client *model.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	r.clients = append(r.clients, client)
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	for _, client := range r.clients {
		if client.ID == id {
			return client, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClientRepo) List(_ context.Context, _ string, _, _ int) ([]model.Client, int64, error) {
	result := make([]model.Client, 0, len(r.clients))
	for _, client := range r.clients {
		result = append(result, *client)
	}
	return result, int64(len(result)), nil
}

func (r *stubClientRepo) Update(_ context.Context, _ *model.Client) error { return nil }

type stubSalesRepo struct {
	opportunities []*model.SalesOpportunity
	assessments   []*model.MEDDPICCAssessment
	lastFilter    *repository.OpportunityFilter
}

func (r *stubSalesRepo) CreateOpportunity(_ context.Context, opportunity *model.SalesOpportunity) error {
	if opportunity.ID == uuid.Nil {
		opportunity.ID = uuid.New()
	}
	r.opportunities = append(r.opportunities, opportunity)
	return nil
}

func (r *stubSalesRepo) FindOpportunityByID(_ context.Context, id uuid.UUID) (*model.SalesOpportunity, error) {
	for _, opportunity := range r.opportunities {
		if opportunity.ID == id {
			return opportunity, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSalesRepo) ListOpportunities(_ context.Context, filter repository.OpportunityFilter) ([]model.SalesOpportunity, error) {
	r.lastFilter = &filter
	var result []model.SalesOpportunity
	for _, opportunity := range r.opportunities {
		if filter.UserID != nil && opportunity.UserID != *filter.UserID {
			continue
		}
		if filter.Stage != "" && opportunity.Stage != filter.Stage {
			continue
		}
		result = append(result, *opportunity)
	}
	return result, nil
}

func (r *stubSalesRepo) UpdateOpportunity(_ context.Context, _ *model.SalesOpportunity) error {
	return nil
}

func (r *stubSalesRepo) CreateAssessment(_ context.Context, assessment *model.MEDDPICCAssessment) error {
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	r.assessments = append(r.assessments, assessment)
	return nil
}

func (r *stubSalesRepo) FindAssessmentByID(_ context.Context, id uuid.UUID) (*model.MEDDPICCAssessment, error) {
	for _, assessment := range r.assessments {
		if assessment.ID == id {
			return assessment, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSalesRepo) ListAssessmentsByUser(_ context.Context, userID uuid.UUID) ([]model.MEDDPICCAssessment, error) {
	var result []model.MEDDPICCAssessment
	for _, assessment := range r.assessments {
		if assessment.UserID == userID {
			result = append(result, *assessment)
		}
	}
	return result, nil
}

func (r *stubSalesRepo) UpdateAssessment(_ context.Context, _ *model.MEDDPICCAssessment) error {
	return nil
}

func crmServiceForTest(salesRepo *stubSalesRepo) CRMService {
	return NewCRMService(&stubClientRepo{}, salesRepo, &stubAuditRepo{}, stubTxManager{}, zap.NewNop())
}

func TestApplyOpportunityRequest(t *testing.T) {
	t.Run("valid stage and amount", func(t *testing.T) {
		opportunity := &model.SalesOpportunity{Stage: model.StageLead}
		err := applyOpportunityRequest(opportunity, OpportunityRequest{
			Stage:       model.StageProposal,
			Probability: 60,
			Amount:      1500.50,
			ClosingDate: "2026-12-31",
		})
		require.NoError(t, err)
		assert.Equal(t, model.StageProposal, opportunity.Stage)
		assert.Equal(t, 60, opportunity.Probability)
		assert.Equal(t, int64(150050), opportunity.Amount)
		require.NotNil(t, opportunity.ClosingDate)
		assert.Equal(t, "2026-12-31", opportunity.ClosingDate.Format("2006-01-02"))
	})

	t.Run("empty stage keeps the current one", func(t *testing.T) {
		opportunity := &model.SalesOpportunity{Stage: model.StageNegotiation}
		require.NoError(t, applyOpportunityRequest(opportunity, OpportunityRequest{}))
		assert.Equal(t, model.StageNegotiation, opportunity.Stage)
	})

	t.Run("unknown stage", func(t *testing.T) {
		err := applyOpportunityRequest(&model.SalesOpportunity{}, OpportunityRequest{Stage: "Stalled"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("probability out of range", func(t *testing.T) {
		err := applyOpportunityRequest(&model.SalesOpportunity{}, OpportunityRequest{Probability: 101})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("negative amount", func(t *testing.T) {
		err := applyOpportunityRequest(&model.SalesOpportunity{}, OpportunityRequest{Amount: -1})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("malformed closing date", func(t *testing.T) {
		err := applyOpportunityRequest(&model.SalesOpportunity{}, OpportunityRequest{ClosingDate: "31/12/2026"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestBuildFunnelSummary(t *testing.T) {
	opportunities := []model.SalesOpportunity{
		{Stage: model.StageLead, Amount: 100_000, Probability: 10},
		{Stage: model.StageLead, Amount: 200_000, Probability: 20},
		{Stage: model.StageClosedWon, Amount: 500_000, Probability: 100},
	}

	summary := BuildFunnelSummary(opportunities)

	assert.Equal(t, 3, summary.TotalOpportunities)
	assert.Equal(t, int64(800_000), summary.TotalAmount)
	assert.Equal(t, int64(10_000+40_000+500_000), summary.WeightedAmount)
	assert.Equal(t, FunnelStageTotals{Count: 2, Amount: 300_000}, summary.ByStage[model.StageLead])
	assert.Equal(t, FunnelStageTotals{Count: 1, Amount: 500_000}, summary.ByStage[model.StageClosedWon])
}

func TestListOpportunities_StaffScopedToOwnPipeline(t *testing.T) {
	staff := uuid.New()
	other := uuid.New()
	salesRepo := &stubSalesRepo{opportunities: []*model.SalesOpportunity{
		{ID: uuid.New(), UserID: staff, OpportunityName: "Mine", Stage: model.StageLead},
		{ID: uuid.New(), UserID: other, OpportunityName: "Theirs", Stage: model.StageLead},
	}}
	svc := crmServiceForTest(salesRepo)

	result, err := svc.ListOpportunities(context.Background(), staff.String(), model.RoleStaff, OpportunityListFilter{})
	require.NoError(t, err)

	require.NotNil(t, salesRepo.lastFilter.UserID)
	assert.Equal(t, staff, *salesRepo.lastFilter.UserID)
	require.Len(t, result, 1)
	assert.Equal(t, "Mine", result[0].OpportunityName)
}

func TestListOpportunities_ManagerSeesAll(t *testing.T) {
	manager := uuid.New()
	salesRepo := &stubSalesRepo{opportunities: []*model.SalesOpportunity{
		{ID: uuid.New(), UserID: uuid.New(), Stage: model.StageLead},
		{ID: uuid.New(), UserID: uuid.New(), Stage: model.StageProposal},
	}}
	svc := crmServiceForTest(salesRepo)

	result, err := svc.ListOpportunities(context.Background(), manager.String(), model.RoleManager, OpportunityListFilter{})
	require.NoError(t, err)
	assert.Nil(t, salesRepo.lastFilter.UserID)
	assert.Len(t, result, 2)
}

func TestUpdateOpportunity_OwnershipEnforced(t *testing.T) {
	owner := uuid.New()
	intruder := uuid.New()
	opportunity := &model.SalesOpportunity{
		ID:              uuid.New(),
		UserID:          owner,
		OpportunityName: "ERP rollout",
		Stage:           model.StageQualified,
	}
	salesRepo := &stubSalesRepo{opportunities: []*model.SalesOpportunity{opportunity}}
	svc := crmServiceForTest(salesRepo)

	_, err := svc.UpdateOpportunity(context.Background(), intruder.String(), model.RoleStaff, opportunity.ID.String(), OpportunityRequest{
		OpportunityName: "ERP rollout",
		Stage:           model.StageProposal,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	resp, err := svc.UpdateOpportunity(context.Background(), owner.String(), model.RoleStaff, opportunity.ID.String(), OpportunityRequest{
		OpportunityName: "ERP rollout",
		Stage:           model.StageProposal,
		Probability:     40,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StageProposal, resp.Stage)
	assert.Equal(t, 40, resp.Probability)
}
