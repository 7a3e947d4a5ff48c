package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BillRequest struct {
	BillDate             string  `json:"bill_date" binding:"required"` // YYYY-MM-DD
	TransportAmount      float64 `json:"transport_amount"`             // BDT
	TransportDescription string  `json:"transport_description"`
	FoodAmount           float64 `json:"food_amount"`
	FoodDescription      string  `json:"food_description"`
	OtherAmount          float64 `json:"other_amount"`
	OtherDescription     string  `json:"other_description"`
	FuelCost             float64 `json:"fuel_cost"`
	RentalCost           float64 `json:"rental_cost"`

	TransportFrom         string `json:"transport_from"`
	TransportTo           string `json:"transport_to"`
	MeansOfTransportation string `json:"means_of_transportation"`

	ClientCompanyName   string `json:"client_company_name"`
	ClientContactNumber string `json:"client_contact_number"`
	ExpensePurpose      string `json:"expense_purpose"`
	ProjectReference    string `json:"project_reference"`
	IsBillable          bool   `json:"is_billable"`
	GeneralDescription  string `json:"general_description"`
}

type BillResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"user_id"`
	BillDate           string  `json:"bill_date"`
	TransportAmount    int64   `json:"transport_amount"`
	FoodAmount         int64   `json:"food_amount"`
	OtherAmount        int64   `json:"other_amount"`
	FuelCost           int64   `json:"fuel_cost"`
	RentalCost         int64   `json:"rental_cost"`
	TotalAmount        int64   `json:"total_amount"`
	TotalAmountBDT     float64 `json:"total_amount_bdt"`
	TransportFrom      string  `json:"transport_from"`
	TransportTo        string  `json:"transport_to"`
	ClientCompanyName  string  `json:"client_company_name"`
	ExpensePurpose     string  `json:"expense_purpose"`
	IsBillable         bool    `json:"is_billable"`
	GeneralDescription string  `json:"general_description"`
	Status             string  `json:"status"`
	ApprovedBy         *string `json:"approved_by"`
	ApprovalDate       *string `json:"approval_date"`
	ApprovalComments   string  `json:"approval_comments"`
	CreatedAt          string  `json:"created_at"`
}

type DecideBillRequest struct {
	Action   string `json:"action" binding:"required,oneof=approved rejected"`
	Comments string `json:"comments"`
}

type BillService interface {
	CreateBill(ctx context.Context, userID string, req BillRequest) (*BillResponse, error)
	GetMyBills(ctx context.Context, userID, status string, page, limit int) ([]BillResponse, int64, error)
	GetAllBills(ctx context.Context, status string, page, limit int) ([]BillResponse, int64, error)
	UpdateBill(ctx context.Context, userID, billID string, req BillRequest) (*BillResponse, error)
	DecideBill(ctx context.Context, approverID, billID string, req DecideBillRequest) (*BillResponse, error)
}

type billService struct {
	billRepo  repository.BillRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
	logger    *zap.Logger
}

func NewBillService(
	billRepo repository.BillRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	logger *zap.Logger,
) BillService {
	return &billService{
		billRepo:  billRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
		logger:    logger,
	}
}

func (s *billService) CreateBill(ctx context.Context, userID string, req BillRequest) (*BillResponse, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	bill := &model.ConvenienceBill{UserID: ownerID, Status: model.BillStatusPending}
	if err := applyBillRequest(bill, req); err != nil {
		return nil, err
	}
	if bill.TotalAmount() <= 0 {
		return nil, apperr.Validation("bill must have at least one positive cost component")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.billRepo.Create(txCtx, bill); createErr != nil {
			return fmt.Errorf("failed to create bill: %w", createErr)
		}
		return s.writeAudit(txCtx, &ownerID, model.ActionCreateBill, bill.ID.String(), map[string]interface{}{
			"bill_date":    req.BillDate,
			"total_amount": bill.TotalAmount(),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toBillResponse(bill)
	return &resp, nil
}

func (s *billService) GetMyBills(ctx context.Context, userID, status string, page, limit int) ([]BillResponse, int64, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	bills, total, err := s.billRepo.ListByUser(ctx, ownerID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}
	return toBillResponses(bills), total, nil
}

func (s *billService) GetAllBills(ctx context.Context, status string, page, limit int) ([]BillResponse, int64, error) {
	bills, total, err := s.billRepo.ListByStatus(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}
	return toBillResponses(bills), total, nil
}

// UpdateBill rewrites a bill's contents and resets its status to pending.
// Any change after a decision puts the bill back in the approval queue.
func (s *billService) UpdateBill(ctx context.Context, userID, billID string, req BillRequest) (*BillResponse, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	id, err := uuid.Parse(billID)
	if err != nil {
		return nil, apperr.Validation("invalid bill id")
	}

	var bill *model.ConvenienceBill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		bill, findErr = s.billRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill %s", billID)
			}
			return findErr
		}

		if bill.UserID != ownerID {
			return apperr.Forbidden("only the owner may update a bill")
		}

		if applyErr := applyBillRequest(bill, req); applyErr != nil {
			return applyErr
		}
		if bill.TotalAmount() <= 0 {
			return apperr.Validation("bill must have at least one positive cost component")
		}

		bill.Status = model.BillStatusPending
		bill.ApprovedBy = nil
		bill.ApprovalDate = nil
		bill.ApprovalComments = ""

		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			return fmt.Errorf("failed to update bill: %w", updateErr)
		}
		return s.writeAudit(txCtx, &ownerID, model.ActionUpdateBill, bill.ID.String(), map[string]interface{}{
			"total_amount": bill.TotalAmount(),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toBillResponse(bill)
	return &resp, nil
}

func (s *billService) DecideBill(ctx context.Context, approverID, billID string, req DecideBillRequest) (*BillResponse, error) {
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	id, err := uuid.Parse(billID)
	if err != nil {
		return nil, apperr.Validation("invalid bill id")
	}

	var bill *model.ConvenienceBill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		bill, findErr = s.billRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bill %s", billID)
			}
			return findErr
		}

		if bill.Status != model.BillStatusPending {
			return apperr.Conflict("bill is already %s", bill.Status)
		}

		now := time.Now()
		bill.Status = req.Action
		bill.ApprovedBy = &approver
		bill.ApprovalDate = &now
		bill.ApprovalComments = req.Comments

		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			return fmt.Errorf("failed to update bill: %w", updateErr)
		}
		return s.writeAudit(txCtx, &approver, model.ActionDecideBill, bill.ID.String(), map[string]interface{}{
			"status":       bill.Status,
			"total_amount": bill.TotalAmount(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("bill.decided", map[string]interface{}{
			"bill_id": bill.ID.String(),
			"status":  bill.Status,
		})
	}

	resp := toBillResponse(bill)
	return &resp, nil
}

func (s *billService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:   userID,
		Action:   action,
		EntityID: entityID,
		Details:  string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func applyBillRequest(bill *model.ConvenienceBill, req BillRequest) error {
	billDate, err := time.Parse("2006-01-02", req.BillDate)
	if err != nil {
		return apperr.Validation("invalid bill_date %q", req.BillDate)
	}

	bill.BillDate = billDate
	bill.TransportAmount = toPaisa(req.TransportAmount)
	bill.TransportDescription = req.TransportDescription
	bill.FoodAmount = toPaisa(req.FoodAmount)
	bill.FoodDescription = req.FoodDescription
	bill.OtherAmount = toPaisa(req.OtherAmount)
	bill.OtherDescription = req.OtherDescription
	bill.FuelCost = toPaisa(req.FuelCost)
	bill.RentalCost = toPaisa(req.RentalCost)
	bill.TransportFrom = req.TransportFrom
	bill.TransportTo = req.TransportTo
	bill.MeansOfTransportation = req.MeansOfTransportation
	bill.ClientCompanyName = req.ClientCompanyName
	bill.ClientContactNumber = req.ClientContactNumber
	bill.ExpensePurpose = req.ExpensePurpose
	bill.ProjectReference = req.ProjectReference
	bill.IsBillable = req.IsBillable
	bill.GeneralDescription = req.GeneralDescription
	return nil
}

func toPaisa(bdt float64) int64 {
	return int64(math.Round(bdt * 100))
}

func toBillResponses(bills []model.ConvenienceBill) []BillResponse {
	result := make([]BillResponse, 0, len(bills))
	for i := range bills {
		result = append(result, toBillResponse(&bills[i]))
	}
	return result
}

func toBillResponse(b *model.ConvenienceBill) BillResponse {
	resp := BillResponse{
		ID:                 b.ID.String(),
		UserID:             b.UserID.String(),
		BillDate:           b.BillDate.Format("2006-01-02"),
		TransportAmount:    b.TransportAmount,
		FoodAmount:         b.FoodAmount,
		OtherAmount:        b.OtherAmount,
		FuelCost:           b.FuelCost,
		RentalCost:         b.RentalCost,
		TotalAmount:        b.TotalAmount(),
		TotalAmountBDT:     float64(b.TotalAmount()) / 100,
		TransportFrom:      b.TransportFrom,
		TransportTo:        b.TransportTo,
		ClientCompanyName:  b.ClientCompanyName,
		ExpensePurpose:     b.ExpensePurpose,
		IsBillable:         b.IsBillable,
		GeneralDescription: b.GeneralDescription,
		Status:             b.Status,
		ApprovalComments:   b.ApprovalComments,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
	}
	if b.ApprovedBy != nil {
		id := b.ApprovedBy.String()
		resp.ApprovedBy = &id
	}
	if b.ApprovalDate != nil {
		ts := b.ApprovalDate.Format(time.RFC3339)
		resp.ApprovalDate = &ts
	}
	return resp
}
