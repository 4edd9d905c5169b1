package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/requestdata"
	"github.com/grimoire-app/grimoire-backend/internal/services"
)

type OverlayHandler struct {
	log            *logger.Logger
	overlayService services.OverlayService
}

func NewOverlayHandler(log *logger.Logger, overlayService services.OverlayService) *OverlayHandler {
	return &OverlayHandler{
		log:            log.With("handler", "OverlayHandler"),
		overlayService: overlayService,
	}
}

func (oh *OverlayHandler) ListOverlays(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var filter repos.OverlayFilter
	if raw := c.Query("ruleset_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_ruleset_id", err)
			return
		}
		filter.RulesetID = parsed
	}
	if raw := c.Query("campaign_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_campaign_id", err)
			return
		}
		filter.CampaignID = parsed
	}
	filter.EntityType = c.Query("entity_type")

	overlays, err := oh.overlayService.ListOverlays(c.Request.Context(), rd.UserID, filter)
	if err != nil {
		oh.log.Error("ListOverlays failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_overlays_failed", err)
		return
	}
	RespondOK(c, gin.H{"overlays": overlays})
}

func (oh *OverlayHandler) CreateOverlay(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		RulesetID   uuid.UUID              `json:"ruleset_id"`
		EntityType  string                 `json:"entity_type"`
		SourceKey   string                 `json:"source_key"`
		OverlayType string                 `json:"overlay_type"`
		OverlayData map[string]interface{} `json:"overlay_data"`
		CampaignID  *uuid.UUID             `json:"campaign_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	overlay, err := oh.overlayService.CreateOverlay(c.Request.Context(), rd.UserID, services.CreateOverlayParams{
		RulesetID:   req.RulesetID,
		EntityType:  req.EntityType,
		SourceKey:   req.SourceKey,
		OverlayType: req.OverlayType,
		OverlayData: req.OverlayData,
		CampaignID:  req.CampaignID,
	})
	if err != nil {
		RespondServiceError(c, "create_overlay_failed", err)
		return
	}
	RespondCreated(c, gin.H{"overlay": overlay})
}

func (oh *OverlayHandler) UpdateOverlay(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	overlayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var req struct {
		OverlayType *string                `json:"overlay_type"`
		OverlayData map[string]interface{} `json:"overlay_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	overlay, err := oh.overlayService.UpdateOverlay(c.Request.Context(), overlayID, rd.UserID, services.UpdateOverlayParams{
		OverlayType: req.OverlayType,
		OverlayData: req.OverlayData,
	})
	if err != nil {
		RespondServiceError(c, "update_overlay_failed", err)
		return
	}
	if overlay == nil {
		RespondNotFound(c, "overlay")
		return
	}
	RespondOK(c, gin.H{"overlay": overlay})
}

func (oh *OverlayHandler) DeleteOverlay(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	overlayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	deleted, err := oh.overlayService.DeleteOverlay(c.Request.Context(), overlayID, rd.UserID)
	if err != nil {
		oh.log.Error("DeleteOverlay failed", "error", err, "overlay_id", overlayID)
		RespondError(c, http.StatusInternalServerError, "delete_overlay_failed", err)
		return
	}
	if !deleted {
		RespondNotFound(c, "overlay")
		return
	}
	RespondOK(c, gin.H{"success": true})
}
