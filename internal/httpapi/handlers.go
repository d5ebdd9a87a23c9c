package httpapi

import (
	"context"
	"net/http"
	"strings"

	"exotel-connector/internal/auth"
	"exotel-connector/internal/exotel"
	"exotel-connector/internal/rbac"
	"exotel-connector/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ExotelAPI is the slice of exotel.Client the handlers need.
type ExotelAPI interface {
	GetCallStatus(ctx context.Context, callID string) (string, bool, error)
	MakeCall(ctx context.Context, from, to, callerID string) (exotel.CallResult, error)
	WhitelistNumbers(ctx context.Context, numbers []string, callerID string) (exotel.Response, error)
	GetAllExophones(ctx context.Context) (exotel.Response, error)
}

// Handlers groups the authenticated HTTP handlers.
// Keep these thin: parse/validate input, call the Exotel client, pass the provider reply through.
type Handlers struct {
	Exotel ExotelAPI
}

// Register mounts the routes on an already authenticated group.
func (h Handlers) Register(v1 *gin.RouterGroup) {
	calls := v1.Group("/calls")
	calls.Use(rbac.RequireAnyRole(rbac.RoleAgent, rbac.RoleAdmin))
	{
		calls.GET("/:call_id/status", h.GetCallStatus)
		calls.POST("", h.MakeCall)
	}

	admin := v1.Group("/admin/exotel")
	admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
	{
		admin.POST("/whitelist", h.WhitelistNumbers)
		admin.GET("/exophones", h.ListExophones)
	}
}

func (h Handlers) GetCallStatus(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	callID := strings.TrimSpace(c.Param("call_id"))
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	status, found, err := h.Exotel.GetCallStatus(c.Request.Context(), callID)
	if err != nil {
		h.upstreamFailed(c, "call status", err)
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call status unavailable", "call_id": callID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "status": status})
}

type makeCallRequest struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	CallerID   string `json:"caller_id"`
}

// MakeCall connects two numbers through the account. The provider's status and body are
// returned untouched, including provider-side errors.
func (h Handlers) MakeCall(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req makeCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.FromNumber == "" || req.ToNumber == "" || req.CallerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from_number, to_number, caller_id required"})
		return
	}

	uid, _ := auth.UserID(c.Request.Context())
	logger.FromGin(c).Info("exotel make call", "user_id", uid, "caller_id", req.CallerID)

	res, err := h.Exotel.MakeCall(c.Request.Context(), req.FromNumber, req.ToNumber, req.CallerID)
	if err != nil {
		h.upstreamFailed(c, "make call", err)
		return
	}
	if res.Parsed == nil {
		passThrough(c, res.Response)
		return
	}
	c.JSON(res.StatusCode, res.Parsed)
}

type whitelistRequest struct {
	Numbers  []string `json:"numbers"`
	CallerID string   `json:"caller_id"`
}

func (h Handlers) WhitelistNumbers(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req whitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Numbers) == 0 || req.CallerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "numbers and caller_id required"})
		return
	}

	res, err := h.Exotel.WhitelistNumbers(c.Request.Context(), req.Numbers, req.CallerID)
	if err != nil {
		h.upstreamFailed(c, "whitelist", err)
		return
	}
	passThrough(c, res)
}

func (h Handlers) ListExophones(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	res, err := h.Exotel.GetAllExophones(c.Request.Context())
	if err != nil {
		h.upstreamFailed(c, "exophones", err)
		return
	}
	passThrough(c, res)
}

func (h Handlers) configured(c *gin.Context) bool {
	if h.Exotel == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "exotel not configured"})
		return false
	}
	return true
}

func (h Handlers) upstreamFailed(c *gin.Context, what string, err error) {
	logger.FromGin(c).Error("exotel "+what+" failed", "err", err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": what + " failed"})
}

func passThrough(c *gin.Context, res exotel.Response) {
	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Data(res.StatusCode, ct, res.Body)
}
