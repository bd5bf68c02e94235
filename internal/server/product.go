package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/backoffice/internal/product/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, "product deleted")
}

func (s *Server) ListProducts(c *gin.Context) {
	query, err := bindListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	lowStock, err := parseOptionalBool(c.Query("low_stock"))
	if err != nil {
		AbortWithError(c, newValidationError("low_stock", "invalid_low_stock", "low_stock must be a boolean"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductRequest{
		Page:       query.Page,
		Limit:      query.Limit,
		Search:     query.Search,
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		LowStock:   lowStock,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Products, resp.Pagination)
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func isProductValidationError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidSKU),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidStock),
		errors.Is(err, productdomain.ErrInvalidStatus),
		errors.Is(err, productdomain.ErrInvalidCategory),
		errors.Is(err, productdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}
