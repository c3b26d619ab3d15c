package handler

import (
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/application/service"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
)

const (
	filterDateLayout = "2006-01-02"

	// InvoiceWarningHeader carries warnings about a rendered invoice, since the
	// body is the document itself.
	InvoiceWarningHeader = "X-Invoice-Warning"
)

// BillHandler handles bill and invoice HTTP requests
type BillHandler struct {
	billService    *service.BillService
	invoiceService *service.InvoiceService
	location       *time.Location
}

// NewBillHandler creates a new bill handler. Date filters are read in loc.
func NewBillHandler(billService *service.BillService, invoiceService *service.InvoiceService, loc *time.Location) *BillHandler {
	if loc == nil {
		loc = time.Local
	}
	return &BillHandler{billService: billService, invoiceService: invoiceService, location: loc}
}

// CreateBill handles creating and numbering a new bill
func (h *BillHandler) CreateBill(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := service.CreateBillInput{
		Customer: entity.Customer{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		Items: make([]service.BillItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.BillItemInput{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	created, err := h.billService.CreateBill(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusCreated, "Bill created successfully", created.Bill, created.Warnings)
}

// GetBill handles getting a bill by ID
func (h *BillHandler) GetBill(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	view, err := h.billService.GetBill(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", view)
}

// ListBills handles listing bills, newest first
func (h *BillHandler) ListBills(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.BillFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search: filter.Search,
	}
	if filter.From != "" {
		from, err := time.ParseInLocation(filterDateLayout, filter.From, h.location)
		if err != nil {
			response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
			return
		}
		params.StartDate = &from
	}
	if filter.To != "" {
		to, err := time.ParseInLocation(filterDateLayout, filter.To, h.location)
		if err != nil {
			response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
			return
		}
		end := to.AddDate(0, 0, 1).Add(-time.Millisecond)
		params.EndDate = &end
	}

	result, err := h.billService.ListBills(c.Request.Context(), userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", result)
}

// ImportBills handles storing bill documents from older clients
func (h *BillHandler) ImportBills(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ImportBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	n, err := h.billService.ImportBills(c.Request.Context(), userID, req.Bills)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bills imported successfully", gin.H{"imported": n})
}

// GetInvoice renders a bill as pdf, html or a raw receipt
func (h *BillHandler) GetInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}
	format, ok := enum.ParseInvoiceFormat(c.Query("format"))
	if !ok {
		response.BadRequest(c, "Unsupported invoice format")
		return
	}

	inv, err := h.invoiceService.Render(c.Request.Context(), userID, id, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	disposition := "attachment"
	if inv.Format == enum.InvoiceFormatHTML || inv.Format == enum.InvoiceFormatPNG {
		disposition = "inline"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": inv.Filename}))
	for _, w := range inv.Warnings {
		c.Writer.Header().Add(InvoiceWarningHeader, w)
	}
	c.Data(http.StatusOK, inv.Format.ContentType(), inv.Content)
}
