package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/backoffice/internal/observability/logger"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"go.uber.org/zap"
)

const (
	rateLimitReasonClientRate  = "client-rate"
	rateLimitReasonAccountBusy = "account-busy"
)

// LoginRateLimit throttles login attempts per client address and lets only
// one attempt per account run at a time.
func (s *Server) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.loginLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.loginLimiter.AllowClient(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("login rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			retryAfter := int(res.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			denyLogin(c, rateLimitReasonClientRate, retryAfter)
			return
		}

		account, err := readLoginAccount(c)
		if err != nil {
			logger.FromContext(ctx).Warn("login rate limit read body failed", zap.Error(err))
			AbortWithError(c, invalidRequestError())
			return
		}
		if account == "" {
			c.Next()
			return
		}

		release, ok := s.loginLimiter.LockAccount(ctx, account)
		if !ok {
			denyLogin(c, rateLimitReasonAccountBusy, 1)
			return
		}
		defer release()

		c.Next()
	}
}

func denyLogin(c *gin.Context, reason string, retryAfter int) {
	logger.FromContext(c.Request.Context()).Warn("login rate limit exceeded",
		zap.String("reason", reason),
		zap.String("client_ip", c.ClientIP()),
	)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

// readLoginAccount peeks at the login name and restores the body for the handler.
func readLoginAccount(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	var payload LoginRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	return payload.login(), nil
}

func (s *Server) recordRefusal(c *gin.Context, err error) {
	var inUse *usageguard.InUseError
	if errors.As(err, &inUse) {
		s.obsMetrics.RecordUsageRefusal(c.Request.Context(), string(inUse.Kind))
	}
}
