package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// listQuery is the page/limit/search triple every list route accepts.
type listQuery struct {
	Page   int
	Limit  int
	Search string
}

// bindListQuery reads page, limit and search. Non-numeric page or limit is a
// validation error; out-of-range values are clamped by the services.
func bindListQuery(c *gin.Context) (listQuery, error) {
	page, err := parseOptionalInt(c.Query("page"))
	if err != nil {
		return listQuery{}, newValidationError("page", "invalid_page", "page must be a number")
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		return listQuery{}, newValidationError("limit", "invalid_limit", "limit must be a number")
	}
	return listQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}, nil
}

func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

func parseOptionalBool(value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false, nil
	}
	return strconv.ParseBool(trimmed)
}
