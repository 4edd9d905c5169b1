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

type CharacterHandler struct {
	log              *logger.Logger
	characterService services.CharacterService
}

func NewCharacterHandler(log *logger.Logger, characterService services.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		log:              log.With("handler", "CharacterHandler"),
		characterService: characterService,
	}
}

func bindCharacterParams(c *gin.Context) (services.CharacterParams, error) {
	var body struct {
		Name          *string         `json:"name"`
		CharacterType *string         `json:"character_type"`
		Level         *int            `json:"level"`
		CoreData      json.RawMessage `json:"core_data"`
		ClassData     json.RawMessage `json:"class_data"`
		Equipment     json.RawMessage `json:"equipment"`
		Spells        json.RawMessage `json:"spells"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return services.CharacterParams{}, err
	}
	return services.CharacterParams{
		Name:          body.Name,
		CharacterType: body.CharacterType,
		Level:         body.Level,
		CoreData:      body.CoreData,
		ClassData:     body.ClassData,
		Equipment:     body.Equipment,
		Spells:        body.Spells,
	}, nil
}

func (chh *CharacterHandler) ListCharacters(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	characters, err := chh.characterService.ListAllCharacters(c.Request.Context(), rd.UserID)
	if err != nil {
		chh.log.Error("ListCharacters failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_characters_failed", err)
		return
	}
	RespondOK(c, gin.H{"characters": characters})
}

func (chh *CharacterHandler) GetCharacter(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	characterID, err := uuid.Parse(c.Param("characterID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	character, err := chh.characterService.GetCharacter(c.Request.Context(), characterID, rd.UserID)
	if err != nil {
		chh.log.Error("GetCharacter failed", "error", err, "character_id", characterID)
		RespondError(c, http.StatusInternalServerError, "load_character_failed", err)
		return
	}
	if character == nil {
		RespondNotFound(c, "character")
		return
	}
	RespondOK(c, gin.H{"character": character})
}

func (chh *CharacterHandler) UpdateCharacter(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	characterID, err := uuid.Parse(c.Param("characterID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	params, bindErr := bindCharacterParams(c)
	if bindErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", bindErr)
		return
	}

	character, err := chh.characterService.UpdateCharacter(c.Request.Context(), characterID, rd.UserID, params)
	if err != nil {
		RespondServiceError(c, "update_character_failed", err)
		return
	}
	if character == nil {
		RespondNotFound(c, "character")
		return
	}
	RespondOK(c, gin.H{"character": character})
}

func (chh *CharacterHandler) DeleteCharacter(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	characterID, err := uuid.Parse(c.Param("characterID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	deleted, err := chh.characterService.DeleteCharacter(c.Request.Context(), characterID, rd.UserID)
	if err != nil {
		chh.log.Error("DeleteCharacter failed", "error", err, "character_id", characterID)
		RespondError(c, http.StatusInternalServerError, "delete_character_failed", err)
		return
	}
	if !deleted {
		RespondNotFound(c, "character")
		return
	}
	RespondOK(c, gin.H{"success": true})
}
