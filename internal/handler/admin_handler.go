package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/bibliaplan/internal/auth"
	"github.com/bibliaplan/internal/service"
	"github.com/gin-gonic/gin"
)

type createUserPayload struct {
	Nome     string `json:"nome"`
	Username string `json:"username"`
}

type resetPasswordPayload struct {
	NovaSenha string `json:"novaSenha"`
}

// ListUsers devolve todos os usuários para o painel administrativo.
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List()
	if err != nil {
		log.Printf("list users error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao listar usuários")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, gin.H{
			"id":        user.ID,
			"nome":      user.Nome,
			"username":  user.Username,
			"is_admin":  user.IsAdmin,
			"criado_em": user.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// CreateUser cria um usuário com a senha padrão e troca obrigatória ativada.
// A senha padrão volta na resposta para o administrador repassar.
func (a *API) CreateUser(c *gin.Context) {
	var payload createUserPayload
	if !bindJSON(c, &payload, "Nome e username são obrigatórios") {
		return
	}
	if payload.Nome == "" || payload.Username == "" {
		respondError(c, http.StatusBadRequest, "Nome e username são obrigatórios")
		return
	}

	user, err := a.users.Create(service.UserInput{Nome: payload.Nome, Username: payload.Username})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			respondError(c, http.StatusBadRequest, "Nome de usuário já existe")
			return
		}
		log.Printf("create user error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          user.ID,
		"senhaPadrao": service.DefaultPassword,
	})
}

// DeleteUser remove um usuário e seus dados. O administrador não pode remover
// a própria conta.
func (a *API) DeleteUser(c *gin.Context) {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Id inválido")
		return
	}

	if targetID == currentUserID(c) {
		respondError(c, http.StatusBadRequest, "Não é possível deletar seu próprio usuário")
		return
	}

	if err := a.users.Delete(targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusBadRequest, "Usuário não encontrado")
			return
		}
		log.Printf("delete user error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao deletar usuário")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetUserPassword troca a senha de um usuário por ação administrativa,
// reativando a troca obrigatória no próximo login.
func (a *API) ResetUserPassword(c *gin.Context) {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Id inválido")
		return
	}

	var payload resetPasswordPayload
	if !bindJSON(c, &payload, "Nova senha não informada") {
		return
	}
	if payload.NovaSenha == "" {
		respondError(c, http.StatusBadRequest, "Nova senha não informada")
		return
	}

	if err := a.users.ResetPassword(targetID, payload.NovaSenha); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondError(c, http.StatusBadRequest, "A senha deve ter no mínimo 8 caracteres")
		case errors.Is(err, auth.ErrPasswordNoSpecial):
			respondError(c, http.StatusBadRequest, "A senha deve conter pelo menos um caractere especial (!@#$%&*...)")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusBadRequest, "Usuário não encontrado")
		default:
			log.Printf("reset password error: %v", err)
			respondError(c, http.StatusInternalServerError, "Erro ao trocar senha")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AllProgress agrega o progresso de todos os usuários para o painel.
func (a *API) AllProgress(c *gin.Context) {
	overview, err := a.progress.AllUsersOverview()
	if err != nil {
		log.Printf("all progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar progresso")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// UserProgress devolve o progresso detalhado de um usuário específico.
func (a *API) UserProgress(c *gin.Context) {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Id inválido")
		return
	}

	user, err := a.users.Get(targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusBadRequest, "Usuário não encontrado")
			return
		}
		log.Printf("get user error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar usuário")
		return
	}

	states, err := a.progress.GetProgress(targetID)
	if err != nil {
		log.Printf("user progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao carregar progresso")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usuario":   gin.H{"nome": user.Nome, "username": user.Username},
		"progresso": states,
	})
}

// AdminSaveProgress permite ao administrador editar o progresso de um usuário.
// É a única rota em que o id do usuário alvo vem da requisição.
func (a *API) AdminSaveProgress(c *gin.Context) {
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Id inválido")
		return
	}

	var payload progressPayload
	if !bindJSON(c, &payload, "Dia e estado de conclusão são obrigatórios") {
		return
	}

	if err := a.progress.SetDayCompleted(targetID, payload.Dia, payload.Concluido); err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			respondError(c, http.StatusBadRequest, "Dia inválido")
			return
		}
		log.Printf("admin save progress error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro ao salvar progresso")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
