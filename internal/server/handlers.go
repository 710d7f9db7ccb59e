package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service"
	"github.com/ifuryst/reelcheck/internal/service/audit"
)

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	}
	if up, known := s.Probe.Up(); known {
		resp["record_store_up"] = up
	}
	c.JSON(http.StatusOK, resp)
}

type loginRequest struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.Auth == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Authentication is disabled"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	token, expires, err := s.Auth.Login(req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code"})
		return
	}

	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(service.SessionCookie, token, maxAge, "/", "", s.Config.Server.CertFile != "", true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "expires_at": expires.Unix()})
}

func (s *Server) handleListCampaigns(c *gin.Context) {
	campaigns, err := s.Review.Campaigns(c.Request.Context())
	if err != nil {
		s.Logger.Error("Error fetching campaigns", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"campaigns": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (s *Server) handleSummary(c *gin.Context) {
	summary := s.Review.Summary(c.Request.Context(), c.Query("campaign_id"))
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleReview(c *gin.Context) {
	if !s.StoreConfigured {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Airtable connection failed"})
		return
	}

	items, err := s.Review.Queue(c.Request.Context(), service.QueueKind(c.Query("type")), c.Query("campaign_id"))
	if errors.Is(err, service.ErrInvalidQueueKind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review type"})
		return
	}
	if err != nil {
		s.Logger.Error("Review data error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// bindWrite decodes the request body and runs a write operation, mapping
// validation failures to 400 and everything else to 500.
func bindWrite[T any](s *Server, c *gin.Context, what string, op func(T) error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := op(req); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "fields": verr.Fields})
			return
		}
		s.Logger.Error(fmt.Sprintf("Failed to save %s", what), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("%s saved successfully", what)})
}

func (s *Server) handleSaveFlag(c *gin.Context) {
	bindWrite(s, c, "Flag", func(req service.FlagRequest) error {
		return s.Review.SaveFlag(c.Request.Context(), req)
	})
}

func (s *Server) handleSaveRating(c *gin.Context) {
	bindWrite(s, c, "Rating", func(req service.RatingRequest) error {
		return s.Review.SaveRating(c.Request.Context(), req)
	})
}

func (s *Server) handleMarkReviewed(c *gin.Context) {
	bindWrite(s, c, "Review status", func(req service.ReviewedRequest) error {
		return s.Review.MarkReviewed(c.Request.Context(), req)
	})
}

func (s *Server) handleApprovePost(c *gin.Context) {
	bindWrite(s, c, "Approval status", func(req service.ApprovalRequest) error {
		return s.Review.ApprovePost(c.Request.Context(), req)
	})
}

func (s *Server) handleSaveComment(c *gin.Context) {
	bindWrite(s, c, "Comment", func(req service.CommentRequest) error {
		return s.Review.SaveComment(c.Request.Context(), req)
	})
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data"})
		return
	}

	msg, err := s.Outreach.Send(c.Request.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data", "fields": verr.Fields})
			return
		}
		s.Logger.Error("Message error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"message":       "Message sent",
		"contactNumber": msg.NormalizedTo,
	})
}

func (s *Server) handleLogMessage(c *gin.Context) {
	var req service.LogMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := s.Outreach.Log(c.Request.Context(), req); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "fields": verr.Fields})
			return
		}
		s.Logger.Error("Log error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type startAuditRequest struct {
	CampaignID string `json:"campaign_id"`
}

func (s *Server) handleStartAudit(c *gin.Context) {
	var req startAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing campaign_id"})
		return
	}

	task, err := s.Audits.Start(c.Request.Context(), req.CampaignID)
	switch {
	case errors.Is(err, audit.ErrMissingCampaign):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing campaign_id"})
		return
	case errors.Is(err, audit.ErrTriggerClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.Logger.Error("Failed to start audit", zap.String("campaign_id", req.CampaignID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"message":      fmt.Sprintf("Audit started for campaign: %s", task.CampaignName),
		"task_id":      task.ID,
		"redirect_url": "/summary?campaign_id=" + url.QueryEscape(task.CampaignID),
	})
}

func (s *Server) handleAuditStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active_audits": s.Audits.Status()})
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (s *Server) handleAuditHistory(c *gin.Context) {
	if s.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audit history is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	runs, err := s.History.RecentRuns(c.Request.Context(), c.Query("campaign_id"), limit)
	if err != nil {
		s.Logger.Error("Failed to list audit runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if runs == nil {
		runs = []models.AuditRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
