// internal/services/admin_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/models"
	"github.com/lojinha/loja-backend/internal/utils"
)

type AdminService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

type DashboardStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalSellers    int64 `json:"total_sellers"`
	TotalProducts   int64 `json:"total_products"`
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	ConfirmedOrders int64 `json:"confirmed_orders"`
	OrdersToday     int64 `json:"orders_today"`
	OutOfStock      int64 `json:"out_of_stock"`
}

func NewAdminService(db *gorm.DB, authorizationService *AuthorizationService) *AdminService {
	return &AdminService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// GetDashboardStats aggregates the counters shown on the admin dashboard.
func (s *AdminService) GetDashboardStats(actor Actor) (*DashboardStats, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	today := time.Now().Truncate(24 * time.Hour)

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{activeScope(s.db.Model(&models.User{})), &stats.TotalUsers},
		{activeScope(s.db.Model(&models.User{})).Where("roles LIKE ?", "%"+string(models.RoleSeller)+"%"), &stats.TotalSellers},
		{activeScope(s.db.Model(&models.Product{})), &stats.TotalProducts},
		{activeScope(s.db.Model(&models.Order{})), &stats.TotalOrders},
		{activeScope(s.db.Model(&models.Order{})).Where("status = ?", models.OrderStatusPending), &stats.PendingOrders},
		{activeScope(s.db.Model(&models.Order{})).Where("status = ?", models.OrderStatusConfirmed), &stats.ConfirmedOrders},
		{activeScope(s.db.Model(&models.Order{})).Where("created_at >= ?", today), &stats.OrdersToday},
		{activeScope(s.db.Model(&models.Product{})).Where("stock_amount = 0"), &stats.OutOfStock},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
		}
	}

	return stats, nil
}

// ListUsers searches every account, active or not. Admin only.
func (s *AdminService) ListUsers(actor Actor, params utils.PaginationParams) ([]models.User, int64, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.User{})
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "name", "email", "last_login_at"})
	if err := utils.ApplyPagination(query, params).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// ListAuditLogs pages through the audit trail, optionally filtered by user.
func (s *AdminService) ListAuditLogs(actor Actor, userID uint, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	if err := s.authorizationService.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.AuditLog{})
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if params.Search != "" {
		query = query.Where("action LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params, []string{"created_at", "action", "resource_type"})
	if err := utils.ApplyPagination(query, params).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}
