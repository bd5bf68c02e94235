package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
)

func (s *Server) CreateAdjustment(c *gin.Context) {
	var req inventorydomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) ListInventoryTransactions(c *gin.Context) {
	query, err := bindListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.inventorySvc.ListTransactions(c.Request.Context(), inventorydomain.ListTransactionsRequest{
		ProductID:     strings.TrimSpace(c.Query("product_id")),
		ReferenceType: strings.TrimSpace(c.Query("reference_type")),
		ReferenceID:   strings.TrimSpace(c.Query("reference_id")),
		Page:          query.Page,
		Limit:         query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Transactions, resp.Pagination)
}

func isInventoryValidationError(err error) bool {
	switch {
	case errors.Is(err, inventorydomain.ErrInvalidProduct),
		errors.Is(err, inventorydomain.ErrInvalidType),
		errors.Is(err, inventorydomain.ErrInvalidReferenceType),
		errors.Is(err, inventorydomain.ErrInvalidReference),
		errors.Is(err, inventorydomain.ErrInvalidQuantity):
		return true
	default:
		return false
	}
}
