package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	referencedomain "github.com/smallbiznis/backoffice/internal/reference/domain"
)

func (s *Server) CreateCategory(c *gin.Context) {
	var req referencedomain.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) UpdateCategory(c *gin.Context) {
	var req referencedomain.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteCategory(c *gin.Context) {
	if err := s.categorySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		s.recordRefusal(c, err)
		AbortWithError(c, err)
		return
	}

	respondMessage(c, "category deleted")
}

func (s *Server) ListCategories(c *gin.Context) {
	query, err := bindListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.categorySvc.List(c.Request.Context(), referencedomain.ListRequest{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Categories, resp.Pagination)
}

func (s *Server) GetCategoryByID(c *gin.Context) {
	resp, err := s.categorySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetCategoryUsage(c *gin.Context) {
	resp, err := s.categorySvc.Usage(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) CreateUnit(c *gin.Context) {
	var req referencedomain.UnitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) UpdateUnit(c *gin.Context) {
	var req referencedomain.UnitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteUnit(c *gin.Context) {
	if err := s.unitSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		s.recordRefusal(c, err)
		AbortWithError(c, err)
		return
	}

	respondMessage(c, "unit deleted")
}

func (s *Server) ListUnits(c *gin.Context) {
	query, err := bindListQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.unitSvc.List(c.Request.Context(), referencedomain.ListRequest{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Units, resp.Pagination)
}

func (s *Server) GetUnitByID(c *gin.Context) {
	resp, err := s.unitSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetUnitUsage(c *gin.Context) {
	resp, err := s.unitSvc.Usage(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func isReferenceValidationError(err error) bool {
	switch {
	case errors.Is(err, referencedomain.ErrInvalidName),
		errors.Is(err, referencedomain.ErrInvalidID):
		return true
	default:
		return false
	}
}
