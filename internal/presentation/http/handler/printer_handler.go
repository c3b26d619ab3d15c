package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/application/service"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// PrintBill sends a bill's receipt to the thermal printer.
func (h *PrinterHandler) PrintBill(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	result, err := h.printerService.PrintBill(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "Receipt sent to printer", result, result.Warnings)
}
