package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billService service.BillService
}

func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) RegisterRoutes(router *gin.RouterGroup) {
	bills := router.Group("/api/bills")
	bills.Use(middleware.RequireRole(anyRole...))
	{
		bills.POST("", h.CreateBill)
		bills.GET("/my-bills", h.GetMyBills)
		bills.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GetAllBills)
		bills.PUT("/:id", h.UpdateBill)
		bills.POST("/:id/approve", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.DecideBill)
	}
}

// CreateBill files a new convenience bill
// @Summary      Create convenience bill
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BillRequest  true  "Bill Payload"
// @Success      201      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// GetMyBills lists the caller's bills
// @Summary      List my bills
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Router       /api/bills/my-bills [get]
func (h *BillHandler) GetMyBills(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	bills, total, err := h.billService.GetMyBills(c.Request.Context(), userID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bills, total, params))
}

// GetAllBills lists every bill, optionally filtered by status
// @Summary      List all bills
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Router       /api/bills [get]
func (h *BillHandler) GetAllBills(c *gin.Context) {
	params := pagination.Parse(c)
	bills, total, err := h.billService.GetAllBills(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bills, total, params))
}

// UpdateBill rewrites a bill and resets it to pending
// @Summary      Update convenience bill
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Bill ID"
// @Param        payload  body      service.BillRequest  true  "Bill Payload"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      403      {object}  response.Response
// @Router       /api/bills/{id} [put]
func (h *BillHandler) UpdateBill(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// DecideBill approves or rejects a pending bill
// @Summary      Decide convenience bill
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Bill ID"
// @Param        payload  body      service.DecideBillRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bills/{id}/approve [post]
func (h *BillHandler) DecideBill(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.DecideBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.DecideBill(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}
