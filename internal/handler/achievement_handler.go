package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/bibliaplan/internal/service"
	"github.com/gin-gonic/gin"
)

type achievementPayload struct {
	ConquistaID string `json:"conquistaId"`
}

// GetAchievements devolve os ids de conquistas desbloqueadas do usuário.
func (a *API) GetAchievements(c *gin.Context) {
	ids, err := a.achievements.ListIDs(currentUserID(c))
	if err != nil {
		log.Printf("list achievements error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar conquistas")
		return
	}
	c.JSON(http.StatusOK, ids)
}

// SaveAchievement grava uma conquista desbloqueada. Idempotente.
func (a *API) SaveAchievement(c *gin.Context) {
	var payload achievementPayload
	if !bindJSON(c, &payload, "Id da conquista é obrigatório") {
		return
	}
	if payload.ConquistaID == "" {
		respondError(c, http.StatusBadRequest, "Id da conquista é obrigatório")
		return
	}

	if err := a.achievements.Unlock(currentUserID(c), payload.ConquistaID); err != nil {
		if errors.Is(err, service.ErrUnknownAchievement) {
			respondError(c, http.StatusBadRequest, "Conquista desconhecida")
			return
		}
		log.Printf("save achievement error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar conquista")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EvaluateAchievements devolve a tabela de conquistas avaliada contra o total
// de dias concluídos do usuário.
func (a *API) EvaluateAchievements(c *gin.Context) {
	completed, err := a.progress.CompletedDayCount(currentUserID(c))
	if err != nil {
		log.Printf("count completed days error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao avaliar conquistas")
		return
	}
	c.JSON(http.StatusOK, service.Evaluate(completed))
}
