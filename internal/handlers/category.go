// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lojinha/loja-backend/internal/i18n"
	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryCreated),
		"category": category,
	})
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(categoryID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, category)
}

// GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	categories, total, err := h.categoryService.ListCategories(params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(categories, total, params))
}

// PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(actor, categoryID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryUpdated),
		"category": category,
	})
}

// PUT /categories/:id/disable
func (h *CategoryHandler) DisableCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DisableCategory(actor, categoryID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityDisabled),
	})
}

// PUT /categories/:id/enable
func (h *CategoryHandler) EnableCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.EnableCategory(actor, categoryID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityEnabled),
	})
}
