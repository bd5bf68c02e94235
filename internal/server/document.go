package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/backoffice/internal/document/domain"
)

// documentHeader is the header as clients send it. due_date and expiry_date
// both bind; the service reads the one its kind uses.
type documentHeader struct {
	documentdomain.DocumentInput
	DueDate    string `json:"due_date"`
	ExpiryDate string `json:"expiry_date"`
}

func (h documentHeader) input(kind documentdomain.Kind) documentdomain.DocumentInput {
	in := h.DocumentInput
	in.TermDate = h.DueDate
	if kind.TermColumn == documentdomain.KindQuotation.TermColumn {
		in.TermDate = h.ExpiryDate
	}
	return in
}

type invoiceRequest struct {
	Invoice *documentHeader            `json:"invoice"`
	Items   []documentdomain.ItemInput `json:"items"`
}

type quotationRequest struct {
	Quotation *documentHeader            `json:"quotation"`
	Items     []documentdomain.ItemInput `json:"items"`
}

type updateStatusRequest struct {
	Status documentdomain.Status `json:"status"`
}

// documentHandlers serves one document kind. Invoices and quotations share
// every route except conversion.
type documentHandlers struct {
	kind   documentdomain.Kind
	svc    documentdomain.Service
	noun   string
	decode func(c *gin.Context) (*documentHeader, []documentdomain.ItemInput, error)
}

func (s *Server) invoiceHandlers() documentHandlers {
	return documentHandlers{
		kind: documentdomain.KindInvoice,
		svc:  s.invoiceSvc,
		noun: "invoice",
		decode: func(c *gin.Context) (*documentHeader, []documentdomain.ItemInput, error) {
			var req invoiceRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, nil, invalidRequestError()
			}
			if req.Invoice == nil {
				return nil, nil, newValidationError("invoice", "required", "invoice is required")
			}
			return req.Invoice, req.Items, nil
		},
	}
}

func (s *Server) quotationHandlers() documentHandlers {
	return documentHandlers{
		kind: documentdomain.KindQuotation,
		svc:  s.quotationSvc,
		noun: "quotation",
		decode: func(c *gin.Context) (*documentHeader, []documentdomain.ItemInput, error) {
			var req quotationRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, nil, invalidRequestError()
			}
			if req.Quotation == nil {
				return nil, nil, newValidationError("quotation", "required", "quotation is required")
			}
			return req.Quotation, req.Items, nil
		},
	}
}

func (h documentHandlers) Create(c *gin.Context) {
	header, items, err := h.decode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []documentdomain.ItemInput{}
	}

	resp, err := h.svc.Create(c.Request.Context(), header.input(h.kind), items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

// Update replaces the item set only when the body carries an items array.
func (h documentHandlers) Update(c *gin.Context) {
	header, items, err := h.decode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), header.input(h.kind), items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (h documentHandlers) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, h.noun+" deleted")
}

func (h documentHandlers) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (h documentHandlers) List(c *gin.Context) {
	query, err := bindListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), documentdomain.ListRequest{
		Page:       query.Page,
		Limit:      query.Limit,
		Search:     query.Search,
		Status:     strings.TrimSpace(c.Query("status")),
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Documents, resp.Pagination)
}

func (h documentHandlers) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) ConvertQuotation(c *gin.Context) {
	// an empty body converts with defaults
	var req documentdomain.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Convert(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func isDocumentValidationError(err error) bool {
	switch {
	case errors.Is(err, documentdomain.ErrInvalidID),
		errors.Is(err, documentdomain.ErrInvalidNumber),
		errors.Is(err, documentdomain.ErrInvalidCustomer),
		errors.Is(err, documentdomain.ErrInvalidDate),
		errors.Is(err, documentdomain.ErrInvalidStatus),
		errors.Is(err, documentdomain.ErrInvalidProduct),
		errors.Is(err, documentdomain.ErrInvalidQuantity),
		errors.Is(err, documentdomain.ErrInvalidUnitPrice),
		errors.Is(err, documentdomain.ErrInvalidItem),
		errors.Is(err, documentdomain.ErrEmptyItems):
		return true
	default:
		return false
	}
}
