// internal/handlers/address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lojinha/loja-backend/internal/i18n"
	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

// POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	address, err := h.addressService.CreateAddress(actor.ID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAddressCreated),
		"address": address,
	})
}

// GET /addresses/:id
func (h *AddressHandler) GetAddress(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	address, err := h.addressService.GetAddress(actor, addressID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, address)
}

// GET /users/:id/addresses
func (h *AddressHandler) ListUserAddresses(c *gin.Context) {
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	addresses, err := h.addressService.ListAddresses(actor, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, addresses)
}

// PUT /addresses/:id
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	address, err := h.addressService.UpdateAddress(actor, addressID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAddressUpdated),
		"address": address,
	})
}

// PUT /addresses/:id/disable
func (h *AddressHandler) DisableAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.DisableAddress(actor, addressID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityDisabled),
	})
}

// PUT /addresses/:id/enable
func (h *AddressHandler) EnableAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := actorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.EnableAddress(actor, addressID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEntityEnabled),
	})
}
