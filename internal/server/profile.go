package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/smallbiznis/backoffice/internal/profile/domain"
)

func (s *Server) GetProfile(c *gin.Context) {
	resp, err := s.profileSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req profiledomain.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.profileSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func isProfileValidationError(err error) bool {
	switch {
	case errors.Is(err, profiledomain.ErrInvalidCompanyName),
		errors.Is(err, profiledomain.ErrInvalidCurrency),
		errors.Is(err, profiledomain.ErrInvalidTaxRate),
		errors.Is(err, profiledomain.ErrInvalidSettings):
		return true
	default:
		return false
	}
}
