package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/application/service"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func bindItem(c *gin.Context) (service.ItemInput, bool) {
	var req request.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "All fields are required", []apperror.FieldError{
			{Field: "item", Message: "All fields are required"},
		})
		return service.ItemInput{}, false
	}
	return service.ItemInput{Name: req.Name, Price: *req.Price, Stock: *req.Stock}, true
}

// CreateItem handles adding an inventory item
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	input, ok := bindItem(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item created successfully", item)
}

// GetItem handles getting an item by ID
func (h *InventoryHandler) GetItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item retrieved successfully", item)
}

// ListItems handles listing inventory items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.ItemFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.inventoryService.ListItems(c.Request.Context(), userID, &repository.InventoryFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search: filter.Search,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Items retrieved successfully", result)
}

// UpdateItem handles replacing an item's fields
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	input, ok := bindItem(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), userID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", item)
}

// DeleteItem handles removing an item
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteItem(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
