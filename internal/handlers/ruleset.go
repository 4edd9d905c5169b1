package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/requestdata"
	"github.com/grimoire-app/grimoire-backend/internal/services"
)

type RulesetHandler struct {
	log            *logger.Logger
	rulesetService services.RulesetService
}

func NewRulesetHandler(log *logger.Logger, rulesetService services.RulesetService) *RulesetHandler {
	return &RulesetHandler{
		log:            log.With("handler", "RulesetHandler"),
		rulesetService: rulesetService,
	}
}

func (rh *RulesetHandler) ListRulesets(c *gin.Context) {
	rulesets, err := rh.rulesetService.ListRulesets(c.Request.Context())
	if err != nil {
		rh.log.Error("ListRulesets failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_rulesets_failed", err)
		return
	}
	RespondOK(c, gin.H{"rulesets": rulesets})
}

func (rh *RulesetHandler) GetRuleset(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	ruleset, err := rh.rulesetService.GetRuleset(c.Request.Context(), rulesetID)
	if err != nil {
		rh.log.Error("GetRuleset failed", "error", err, "ruleset_id", rulesetID)
		RespondError(c, http.StatusInternalServerError, "load_ruleset_failed", err)
		return
	}
	if ruleset == nil {
		RespondNotFound(c, "ruleset")
		return
	}
	RespondOK(c, gin.H{"ruleset": ruleset})
}

func (rh *RulesetHandler) ListSources(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	docs, err := rh.rulesetService.ListSources(c.Request.Context(), rulesetID)
	if err != nil {
		rh.log.Error("ListSources failed", "error", err, "ruleset_id", rulesetID)
		RespondError(c, http.StatusInternalServerError, "load_sources_failed", err)
		return
	}
	if docs == nil {
		RespondNotFound(c, "ruleset")
		return
	}
	RespondOK(c, gin.H{"sources": docs})
}

func (rh *RulesetHandler) ListEntities(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	result, err := rh.rulesetService.ListEntities(c.Request.Context(), services.ListEntitiesParams{
		RulesetID:  rulesetID,
		EntityType: c.Query("type"),
		Search:     c.Query("search"),
		Source:     c.Query("source"),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		rh.log.Error("ListEntities failed", "error", err, "ruleset_id", rulesetID)
		RespondError(c, http.StatusInternalServerError, "load_entities_failed", err)
		return
	}
	if result == nil {
		RespondNotFound(c, "ruleset")
		return
	}
	RespondOK(c, result)
}

func (rh *RulesetHandler) GetEntity(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	entityID, err := uuid.Parse(c.Param("entityID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	effective := c.Query("effective") == "true"
	if effective {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		var campaignID *uuid.UUID
		if raw := c.Query("campaign_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_campaign_id", err)
				return
			}
			campaignID = &parsed
		}
		result, err := rh.rulesetService.GetEffectiveEntity(c.Request.Context(), rulesetID, entityID, rd.UserID, campaignID)
		if err != nil {
			rh.log.Error("GetEffectiveEntity failed", "error", err, "entity_id", entityID)
			RespondError(c, http.StatusInternalServerError, "load_entity_failed", err)
			return
		}
		if result == nil {
			RespondNotFound(c, "entity")
			return
		}
		RespondOK(c, gin.H{"entity": result})
		return
	}

	entity, err := rh.rulesetService.GetEntity(c.Request.Context(), rulesetID, entityID)
	if err != nil {
		rh.log.Error("GetEntity failed", "error", err, "entity_id", entityID)
		RespondError(c, http.StatusInternalServerError, "load_entity_failed", err)
		return
	}
	if entity == nil {
		RespondNotFound(c, "entity")
		return
	}
	RespondOK(c, gin.H{"entity": entity})
}
