package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientRequest struct {
	CompanyName   string `json:"company_name" binding:"required,max=200"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type OpportunityRequest struct {
	OpportunityName string  `json:"opportunity_name" binding:"required,max=200"`
	ClientName      string  `json:"client_name"`
	Stage           string  `json:"stage"`
	Probability     int     `json:"probability"`
	Amount          float64 `json:"amount"` // BDT; stored as paisa
	ClosingDate     string  `json:"closing_date"`
	Notes           string  `json:"notes"`
}

type OpportunityResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	OpportunityName string  `json:"opportunity_name"`
	ClientName      string  `json:"client_name"`
	Stage           string  `json:"stage"`
	Probability     int     `json:"probability"`
	Amount          int64   `json:"amount"`
	AmountBDT       float64 `json:"amount_bdt"`
	WeightedAmount  int64   `json:"weighted_amount"`
	ClosingDate     *string `json:"closing_date"`
	Notes           string  `json:"notes"`
	CreatedAt       string  `json:"created_at"`
}

type OpportunityListFilter struct {
	Stage string
}

// FunnelSummary totals the open pipeline per stage. WeightedAmount is each
// opportunity's amount scaled by its probability.
type FunnelSummary struct {
	TotalOpportunities int                          `json:"total_opportunities"`
	TotalAmount        int64                        `json:"total_amount"`
	WeightedAmount     int64                        `json:"weighted_amount"`
	ByStage            map[string]FunnelStageTotals `json:"by_stage"`
}

type FunnelStageTotals struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

type AssessmentRequest struct {
	ClientName       string `json:"client_name"`
	OpportunityName  string `json:"opportunity_name" binding:"required,max=200"`
	Metrics          string `json:"metrics"`
	EconomicBuyer    string `json:"economic_buyer"`
	DecisionCriteria string `json:"decision_criteria"`
	DecisionProcess  string `json:"decision_process"`
	PaperProcess     string `json:"paper_process"`
	IdentifyPain     string `json:"identify_pain"`
	Champion         string `json:"champion"`
	Competition      string `json:"competition"`
}

type CRMService interface {
	CreateClient(ctx context.Context, userID string, req ClientRequest) (*model.Client, error)
	ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error)
	UpdateClient(ctx context.Context, userID, clientID string, req ClientRequest) (*model.Client, error)

	CreateOpportunity(ctx context.Context, userID string, req OpportunityRequest) (*OpportunityResponse, error)
	ListOpportunities(ctx context.Context, actorID, actorRole string, filter OpportunityListFilter) ([]OpportunityResponse, error)
	UpdateOpportunity(ctx context.Context, actorID, actorRole, opportunityID string, req OpportunityRequest) (*OpportunityResponse, error)
	GetFunnelSummary(ctx context.Context, actorID, actorRole string) (*FunnelSummary, error)

	CreateAssessment(ctx context.Context, userID string, req AssessmentRequest) (*model.MEDDPICCAssessment, error)
	ListMyAssessments(ctx context.Context, userID string) ([]model.MEDDPICCAssessment, error)
}

type crmService struct {
	clientRepo repository.ClientRepository
	salesRepo  repository.SalesRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	logger     *zap.Logger
}

func NewCRMService(
	clientRepo repository.ClientRepository,
	salesRepo repository.SalesRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logger *zap.Logger,
) CRMService {
	return &crmService{
		clientRepo: clientRepo,
		salesRepo:  salesRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *crmService) CreateClient(ctx context.Context, userID string, req ClientRequest) (*model.Client, error) {
	creator := parseUUIDOrNil(userID)
	client := &model.Client{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		CreatedBy:     creator,
		IsActive:      true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.clientRepo.Create(txCtx, client); createErr != nil {
			return fmt.Errorf("failed to create client: %w", createErr)
		}
		return s.writeAudit(txCtx, creator, model.ActionCreateClient, client.ID.String(), client.CompanyName, nil)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *crmService) ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error) {
	return s.clientRepo.List(ctx, search, page, limit)
}

func (s *crmService) UpdateClient(ctx context.Context, userID, clientID string, req ClientRequest) (*model.Client, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apperr.Validation("invalid client id")
	}

	var client *model.Client
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		client, findErr = s.clientRepo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("client %s", clientID)
			}
			return findErr
		}

		client.CompanyName = req.CompanyName
		client.ContactPerson = req.ContactPerson
		client.ContactNumber = req.ContactNumber
		client.Email = req.Email
		client.Address = req.Address

		if updateErr := s.clientRepo.Update(txCtx, client); updateErr != nil {
			return fmt.Errorf("failed to update client: %w", updateErr)
		}
		return s.writeAudit(txCtx, parseUUIDOrNil(userID), model.ActionUpdateClient, client.ID.String(), client.CompanyName, nil)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *crmService) CreateOpportunity(ctx context.Context, userID string, req OpportunityRequest) (*OpportunityResponse, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	opportunity := &model.SalesOpportunity{
		UserID:          owner,
		OpportunityName: req.OpportunityName,
		ClientName:      req.ClientName,
		Stage:           model.StageLead,
		Notes:           req.Notes,
	}
	if err := applyOpportunityRequest(opportunity, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.salesRepo.CreateOpportunity(txCtx, opportunity); createErr != nil {
			return fmt.Errorf("failed to create opportunity: %w", createErr)
		}
		return s.writeAudit(txCtx, &owner, model.ActionCreateOpportunity, opportunity.ID.String(), opportunity.OpportunityName, map[string]interface{}{
			"stage":  opportunity.Stage,
			"amount": opportunity.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toOpportunityResponse(opportunity)
	return &resp, nil
}

func (s *crmService) ListOpportunities(ctx context.Context, actorID, actorRole string, filter OpportunityListFilter) ([]OpportunityResponse, error) {
	repoFilter, err := opportunityScope(actorID, actorRole)
	if err != nil {
		return nil, err
	}
	repoFilter.Stage = filter.Stage
	if repoFilter.Stage != "" && !model.ValidFunnelStage(repoFilter.Stage) {
		return nil, apperr.Validation("unknown funnel stage %q", repoFilter.Stage)
	}

	opportunities, err := s.salesRepo.ListOpportunities(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	result := make([]OpportunityResponse, 0, len(opportunities))
	for i := range opportunities {
		result = append(result, toOpportunityResponse(&opportunities[i]))
	}
	return result, nil
}

func (s *crmService) UpdateOpportunity(ctx context.Context, actorID, actorRole, opportunityID string, req OpportunityRequest) (*OpportunityResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	id, err := uuid.Parse(opportunityID)
	if err != nil {
		return nil, apperr.Validation("invalid opportunity id")
	}

	var opportunity *model.SalesOpportunity
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		opportunity, findErr = s.salesRepo.FindOpportunityByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("opportunity %s", opportunityID)
			}
			return findErr
		}

		if actorRole != model.RoleAdmin && actorRole != model.RoleManager && opportunity.UserID != actor {
			return apperr.Forbidden("only the owner may update this opportunity")
		}

		opportunity.OpportunityName = req.OpportunityName
		opportunity.ClientName = req.ClientName
		opportunity.Notes = req.Notes
		if applyErr := applyOpportunityRequest(opportunity, req); applyErr != nil {
			return applyErr
		}

		if updateErr := s.salesRepo.UpdateOpportunity(txCtx, opportunity); updateErr != nil {
			return fmt.Errorf("failed to update opportunity: %w", updateErr)
		}
		return s.writeAudit(txCtx, &actor, model.ActionUpdateOpportunity, opportunity.ID.String(), opportunity.OpportunityName, map[string]interface{}{
			"stage":       opportunity.Stage,
			"probability": opportunity.Probability,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toOpportunityResponse(opportunity)
	return &resp, nil
}

func (s *crmService) GetFunnelSummary(ctx context.Context, actorID, actorRole string) (*FunnelSummary, error) {
	repoFilter, err := opportunityScope(actorID, actorRole)
	if err != nil {
		return nil, err
	}

	opportunities, err := s.salesRepo.ListOpportunities(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	return BuildFunnelSummary(opportunities), nil
}

func (s *crmService) CreateAssessment(ctx context.Context, userID string, req AssessmentRequest) (*model.MEDDPICCAssessment, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	assessment := &model.MEDDPICCAssessment{
		UserID:           owner,
		ClientName:       req.ClientName,
		OpportunityName:  req.OpportunityName,
		Metrics:          req.Metrics,
		EconomicBuyer:    req.EconomicBuyer,
		DecisionCriteria: req.DecisionCriteria,
		DecisionProcess:  req.DecisionProcess,
		PaperProcess:     req.PaperProcess,
		IdentifyPain:     req.IdentifyPain,
		Champion:         req.Champion,
		Competition:      req.Competition,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.salesRepo.CreateAssessment(txCtx, assessment); createErr != nil {
			return fmt.Errorf("failed to create assessment: %w", createErr)
		}
		return s.writeAudit(txCtx, &owner, model.ActionCreateAssessment, assessment.ID.String(), assessment.OpportunityName, nil)
	})
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *crmService) ListMyAssessments(ctx context.Context, userID string) ([]model.MEDDPICCAssessment, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	return s.salesRepo.ListAssessmentsByUser(ctx, owner)
}

// opportunityScope pins non-managers to their own pipeline, mirroring the
// expense report access rule.
func opportunityScope(actorID, actorRole string) (repository.OpportunityFilter, error) {
	if actorRole == model.RoleAdmin || actorRole == model.RoleManager {
		return repository.OpportunityFilter{}, nil
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return repository.OpportunityFilter{}, fmt.Errorf("invalid user id: %w", err)
	}
	return repository.OpportunityFilter{UserID: &actor}, nil
}

// applyOpportunityRequest validates and copies the stage, probability, amount
// and closing date onto the opportunity. An empty stage keeps the current one.
func applyOpportunityRequest(opportunity *model.SalesOpportunity, req OpportunityRequest) error {
	if req.Stage != "" {
		if !model.ValidFunnelStage(req.Stage) {
			return apperr.Validation("unknown funnel stage %q", req.Stage)
		}
		opportunity.Stage = req.Stage
	}

	if req.Probability < 0 || req.Probability > 100 {
		return apperr.Validation("probability must be between 0 and 100")
	}
	opportunity.Probability = req.Probability

	if req.Amount < 0 {
		return apperr.Validation("amount must not be negative")
	}
	opportunity.Amount = toPaisa(req.Amount)

	if req.ClosingDate != "" {
		closing, err := time.Parse("2006-01-02", req.ClosingDate)
		if err != nil {
			return apperr.Validation("invalid closing_date %q", req.ClosingDate)
		}
		opportunity.ClosingDate = &closing
	}
	return nil
}

// BuildFunnelSummary totals the pipeline per stage over an already-scoped
// opportunity set.
func BuildFunnelSummary(opportunities []model.SalesOpportunity) *FunnelSummary {
	summary := &FunnelSummary{
		TotalOpportunities: len(opportunities),
		ByStage:            make(map[string]FunnelStageTotals),
	}

	for i := range opportunities {
		opportunity := &opportunities[i]
		summary.TotalAmount += opportunity.Amount
		summary.WeightedAmount += opportunity.Amount * int64(opportunity.Probability) / 100

		totals := summary.ByStage[opportunity.Stage]
		totals.Count++
		totals.Amount += opportunity.Amount
		summary.ByStage[opportunity.Stage] = totals
	}
	return summary
}

func (s *crmService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if details != nil {
		payload, _ := json.Marshal(details)
		entry.Details = string(payload)
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toOpportunityResponse(o *model.SalesOpportunity) OpportunityResponse {
	resp := OpportunityResponse{
		ID:              o.ID.String(),
		UserID:          o.UserID.String(),
		OpportunityName: o.OpportunityName,
		ClientName:      o.ClientName,
		Stage:           o.Stage,
		Probability:     o.Probability,
		Amount:          o.Amount,
		AmountBDT:       float64(o.Amount) / 100,
		WeightedAmount:  o.Amount * int64(o.Probability) / 100,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
	if o.ClosingDate != nil {
		closing := o.ClosingDate.Format("2006-01-02")
		resp.ClosingDate = &closing
	}
	return resp
}
