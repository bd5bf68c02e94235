package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
)

type envelope struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Pagination *pagination.PageInfo `json:"pagination,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

func respondList(c *gin.Context, data any, page pagination.PageInfo) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &page})
}
