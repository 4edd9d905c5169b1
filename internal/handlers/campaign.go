package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/requestdata"
	"github.com/grimoire-app/grimoire-backend/internal/services"
)

type CampaignHandler struct {
	log              *logger.Logger
	campaignService  services.CampaignService
	characterService services.CharacterService
}

func NewCampaignHandler(log *logger.Logger, campaignService services.CampaignService, characterService services.CharacterService) *CampaignHandler {
	return &CampaignHandler{
		log:              log.With("handler", "CampaignHandler"),
		campaignService:  campaignService,
		characterService: characterService,
	}
}

func (ch *CampaignHandler) ListCampaigns(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaigns, err := ch.campaignService.ListCampaigns(c.Request.Context(), rd.UserID)
	if err != nil {
		ch.log.Error("ListCampaigns failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_campaigns_failed", err)
		return
	}
	RespondOK(c, gin.H{"campaigns": campaigns})
}

func (ch *CampaignHandler) CreateCampaign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		Name        string          `json:"name"`
		RulesetID   uuid.UUID       `json:"ruleset_id"`
		Description string          `json:"description"`
		Settings    json.RawMessage `json:"settings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	campaign, err := ch.campaignService.CreateCampaign(c.Request.Context(), rd.UserID, services.CreateCampaignParams{
		Name:        body.Name,
		RulesetID:   body.RulesetID,
		Description: body.Description,
		Settings:    body.Settings,
	})
	if err != nil {
		RespondServiceError(c, "create_campaign_failed", err)
		return
	}
	RespondCreated(c, gin.H{"campaign": campaign})
}

func (ch *CampaignHandler) GetCampaign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	campaign, err := ch.campaignService.GetCampaign(c.Request.Context(), campaignID, rd.UserID)
	if err != nil {
		ch.log.Error("GetCampaign failed", "error", err, "campaign_id", campaignID)
		RespondError(c, http.StatusInternalServerError, "load_campaign_failed", err)
		return
	}
	if campaign == nil {
		RespondNotFound(c, "campaign")
		return
	}
	RespondOK(c, gin.H{"campaign": campaign})
}

func (ch *CampaignHandler) UpdateCampaign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var body struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		Status      *string         `json:"status"`
		Settings    json.RawMessage `json:"settings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	campaign, err := ch.campaignService.UpdateCampaign(c.Request.Context(), campaignID, rd.UserID, services.UpdateCampaignParams{
		Name:        body.Name,
		Description: body.Description,
		Status:      body.Status,
		Settings:    body.Settings,
	})
	if err != nil {
		RespondServiceError(c, "update_campaign_failed", err)
		return
	}
	if campaign == nil {
		RespondNotFound(c, "campaign")
		return
	}
	RespondOK(c, gin.H{"campaign": campaign})
}

func (ch *CampaignHandler) DeleteCampaign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	deleted, err := ch.campaignService.DeleteCampaign(c.Request.Context(), campaignID, rd.UserID)
	if err != nil {
		ch.log.Error("DeleteCampaign failed", "error", err, "campaign_id", campaignID)
		RespondError(c, http.StatusInternalServerError, "delete_campaign_failed", err)
		return
	}
	if !deleted {
		RespondNotFound(c, "campaign")
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CampaignHandler) ListCampaignCharacters(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	characters, err := ch.characterService.ListByCampaign(c.Request.Context(), campaignID, rd.UserID)
	if err != nil {
		RespondServiceError(c, "load_characters_failed", err)
		return
	}
	RespondOK(c, gin.H{"characters": characters})
}

func (ch *CampaignHandler) CreateCampaignCharacter(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	params, bindErr := bindCharacterParams(c)
	if bindErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", bindErr)
		return
	}

	character, err := ch.characterService.CreateCharacter(c.Request.Context(), campaignID, rd.UserID, params)
	if err != nil {
		RespondServiceError(c, "create_character_failed", err)
		return
	}
	RespondCreated(c, gin.H{"character": character})
}
