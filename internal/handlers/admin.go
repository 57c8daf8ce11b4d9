// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	paymentService *services.PaymentService
}

func NewAdminHandler(adminService *services.AdminService, paymentService *services.PaymentService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		paymentService: paymentService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	stats, err := h.adminService.GetDashboardStats(actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(actor, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var userID uint
	if id, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		userID = uint(id)
	}

	params := utils.GetPaginationParams(c)
	logs, total, err := h.adminService.ListAuditLogs(actor, userID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}

// POST /admin/orders/:id/refund
func (h *AdminHandler) RefundOrder(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	if err := h.paymentService.RefundOrder(actor, orderID, req.Reason); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"refunded": true})
}
