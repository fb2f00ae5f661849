package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/bibliaplan/internal/plan"
	"github.com/bibliaplan/internal/service"
	"github.com/gin-gonic/gin"
)

type progressPayload struct {
	Dia       int  `json:"dia"`
	Concluido bool `json:"concluido"`
}

type referencePayload struct {
	Dia    int  `json:"dia"`
	Indice int  `json:"indice"`
	Lida   bool `json:"lida"`
}

type bulkReferencesPayload struct {
	Indices []int `json:"indices"`
}

// GetProgress devolve o progresso do usuário da sessão, em ordem de dia.
func (a *API) GetProgress(c *gin.Context) {
	states, err := a.progress.GetProgress(currentUserID(c))
	if err != nil {
		log.Printf("get progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar progresso")
		return
	}
	c.JSON(http.StatusOK, states)
}

// SaveProgress grava a conclusão de um dia do usuário da sessão.
func (a *API) SaveProgress(c *gin.Context) {
	var payload progressPayload
	if !bindJSON(c, &payload, "Dia e estado de conclusão são obrigatórios") {
		return
	}

	if err := a.progress.SetDayCompleted(currentUserID(c), payload.Dia, payload.Concluido); err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			respondError(c, http.StatusBadRequest, "Dia inválido")
			return
		}
		log.Printf("save progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar progresso")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetReferences devolve os índices de referências lidas por dia.
func (a *API) GetReferences(c *gin.Context) {
	read, err := a.progress.GetReadReferences(currentUserID(c))
	if err != nil {
		log.Printf("get references error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar leituras")
		return
	}
	c.JSON(http.StatusOK, read)
}

// SaveReference marca ou desmarca uma referência e regrava a conclusão do dia
// derivada da cobertura de leituras.
func (a *API) SaveReference(c *gin.Context) {
	var payload referencePayload
	if !bindJSON(c, &payload, "Dia e índice da referência são obrigatórios") {
		return
	}

	userID := currentUserID(c)
	if err := a.progress.SetReferenceRead(userID, payload.Dia, payload.Indice, payload.Lida); err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			respondError(c, http.StatusBadRequest, "Dia inválido")
			return
		}
		if errors.Is(err, service.ErrIndexOutOfRange) {
			respondError(c, http.StatusBadRequest, "Índice de referência inválido")
			return
		}
		log.Printf("save reference error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar leitura")
		return
	}

	completed, err := a.progress.RecomputeDay(userID, payload.Dia)
	if err != nil {
		log.Printf("recompute day error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar leitura")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "concluido": completed})
}

// BulkSaveReferences substitui o conjunto de leituras de um dia e rederiva a
// conclusão. Usado por "marcar todos" / "desmarcar todos".
func (a *API) BulkSaveReferences(c *gin.Context) {
	dia, err := parseIntParam(c, "dia")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Dia inválido")
		return
	}

	var payload bulkReferencesPayload
	if !bindJSON(c, &payload, "Lista de índices é obrigatória") {
		return
	}

	userID := currentUserID(c)
	if err := a.progress.BulkSetReferencesRead(userID, dia, payload.Indices); err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			respondError(c, http.StatusBadRequest, "Dia inválido")
			return
		}
		if errors.Is(err, service.ErrIndexOutOfRange) {
			respondError(c, http.StatusBadRequest, "Índice de referência inválido")
			return
		}
		log.Printf("bulk save references error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar leituras")
		return
	}

	completed, err := a.progress.RecomputeDay(userID, dia)
	if err != nil {
		log.Printf("recompute day error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar leituras")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "concluido": completed})
}

// ClearProgress apaga progresso e conquistas do usuário da sessão ("novo ciclo").
func (a *API) ClearProgress(c *gin.Context) {
	if err := a.progress.ClearAllProgress(currentUserID(c)); err != nil {
		log.Printf("clear progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao limpar progresso")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSummary devolve as estatísticas anuais do usuário da sessão.
func (a *API) GetSummary(c *gin.Context) {
	summary, err := a.progress.Summary(currentUserID(c))
	if err != nil {
		log.Printf("summary error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao calcular estatísticas")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetPlan devolve o plano de leitura completo.
func (a *API) GetPlan(c *gin.Context) {
	c.JSON(http.StatusOK, plan.All())
}

// GetPlanDay devolve um dia do plano.
func (a *API) GetPlanDay(c *gin.Context) {
	dia, err := parseIntParam(c, "dia")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Dia inválido")
		return
	}

	day, ok := plan.ByDay(dia)
	if !ok {
		respondError(c, http.StatusBadRequest, "Dia inválido")
		return
	}
	c.JSON(http.StatusOK, day)
}

// ServerTime devolve a data do servidor, usada pelo cliente para posicionar o
// dia atual do plano sem depender do relógio local.
func (a *API) ServerTime(c *gin.Context) {
	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"timestamp": now.UnixMilli(),
		"iso":       now.Format(time.RFC3339),
		"timezone":  now.Location().String(),
		"year":      now.Year(),
		"month":     int(now.Month()) - 1,
		"date":      now.Day(),
		"dayOfYear": now.YearDay(),
	})
}
