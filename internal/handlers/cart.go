// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lojinha/loja-backend/internal/i18n"
	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

type CartHandler struct {
	cartService  *services.CartService
	orderService *services.OrderService
}

type addItemsRequest struct {
	Items []services.CartItemInput `json:"items"`
}

func NewCartHandler(cartService *services.CartService, orderService *services.OrderService) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		orderService: orderService,
	}
}

// GET /users/me/shopping-cart
func (h *CartHandler) GetMyCart(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	cart, err := h.cartService.GetCart(actor, actor.ID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /users/me/shopping-cart
func (h *CartHandler) CreateMyCart(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reset := c.Query("reset") == "true"

	cart, err := h.cartService.EnsureCart(actor.ID, reset)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, cart)
}

// POST /users/me/shopping-cart/items?clean=
func (h *CartHandler) AddItems(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	clean := c.Query("clean") == "true"

	groups, err := h.cartService.AddItems(actor.ID, req.Items, clean)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyCartItemsAdded),
		"product_groups": groups,
	})
}

// DELETE /users/me/shopping-cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cart, err := h.cartService.RemoveItem(actor.ID, req.ProductID, req.Amount)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartItemRemoved),
		"cart":    cart,
	})
}

// POST /users/me/shopping-cart/finish
func (h *CartHandler) Checkout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.Checkout(actor.ID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCreated),
		"order":   order,
	})
}

// PUT /shopping-carts/:id/disable
func (h *CartHandler) DisableCart(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.DisableCart(actor, cartID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityDisabled),
	})
}

// PUT /shopping-carts/:id/enable
func (h *CartHandler) EnableCart(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.EnableCart(actor, cartID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityEnabled),
	})
}
