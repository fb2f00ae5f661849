package handler

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/bibliaplan/internal/auth"
	"github.com/bibliaplan/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Chaves usadas na sessão.
const (
	sessionUserID     = "user_id"
	sessionIsAdmin    = "is_admin"
	sessionNome       = "nome"
	sessionMustChange = "must_change_password"
)

type loginPayload struct {
	Username string `json:"username"`
	Senha    string `json:"senha"`
}

type usuarioView struct {
	ID       uint   `json:"id"`
	Nome     string `json:"nome"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Login valida credenciais, aplica o limitador de tentativas e abre a sessão.
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "Username e senha são obrigatórios") {
		return
	}
	if payload.Username == "" || payload.Senha == "" {
		respondError(c, http.StatusBadRequest, "Username e senha são obrigatórios")
		return
	}

	allowed, retryAfter := a.limiter.Check(payload.Username)
	if !allowed {
		minutes := int(math.Ceil(retryAfter.Minutes()))
		respondError(c, http.StatusTooManyRequests,
			fmt.Sprintf("Muitas tentativas falhas. Tente novamente em %d minuto(s).", minutes))
		return
	}

	user, err := a.users.Authenticate(payload.Username, payload.Senha)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.limiter.RegisterFailure(payload.Username)
			respondError(c, http.StatusUnauthorized, "Credenciais inválidas")
			return
		}
		log.Printf("login error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	a.limiter.Clear(payload.Username)

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionIsAdmin, user.IsAdmin)
	session.Set(sessionNome, user.Nome)
	session.Set(sessionMustChange, user.MustChangePassword)
	if err := session.Save(); err != nil {
		log.Printf("session save error: %v", err)
		respondError(c, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"deveTrocarSenha": user.MustChangePassword,
		"usuario": usuarioView{
			ID:       user.ID,
			Nome:     user.Nome,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		},
	})
}

// Logout encerra a sessão.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session informa se há sessão ativa e devolve os dados do usuário.
// Sessões de usuários removidos são encerradas.
func (a *API) Session(c *gin.Context) {
	session := sessions.Default(c)
	rawID := session.Get(sessionUserID)
	if rawID == nil {
		c.JSON(http.StatusOK, gin.H{"autenticado": false})
		return
	}

	userID, ok := rawID.(uint)
	if !ok {
		session.Clear()
		session.Save()
		c.JSON(http.StatusOK, gin.H{"autenticado": false})
		return
	}

	user, err := a.users.Get(userID)
	if err != nil {
		session.Clear()
		session.Save()
		c.JSON(http.StatusOK, gin.H{"autenticado": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"autenticado":     true,
		"deveTrocarSenha": user.MustChangePassword,
		"usuario": usuarioView{
			ID:       user.ID,
			Nome:     user.Nome,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		},
	})
}

type changePasswordPayload struct {
	SenhaAtual string `json:"senhaAtual"`
	NovaSenha  string `json:"novaSenha"`
}

// ChangeOwnPassword troca a senha do usuário autenticado. Uma troca bem
// sucedida limpa a flag de troca obrigatória, inclusive na sessão atual.
func (a *API) ChangeOwnPassword(c *gin.Context) {
	userID := currentUserID(c)

	var payload changePasswordPayload
	if !bindJSON(c, &payload, "Senha atual e nova senha são obrigatórias") {
		return
	}
	if payload.SenhaAtual == "" || payload.NovaSenha == "" {
		respondError(c, http.StatusBadRequest, "Senha atual e nova senha são obrigatórias")
		return
	}

	if err := a.users.ChangeOwnPassword(userID, payload.SenhaAtual, payload.NovaSenha); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondError(c, http.StatusBadRequest, "A senha deve ter no mínimo 8 caracteres")
		case errors.Is(err, auth.ErrPasswordNoSpecial):
			respondError(c, http.StatusBadRequest, "A senha deve conter pelo menos um caractere especial (!@#$%&*...)")
		case errors.Is(err, service.ErrWrongCurrentPassword):
			respondError(c, http.StatusUnauthorized, "Senha atual incorreta")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusUnauthorized, "Não autenticado")
		default:
			log.Printf("change password error: %v", err)
			respondError(c, http.StatusInternalServerError, "Erro ao alterar senha")
		}
		return
	}

	session := sessions.Default(c)
	session.Set(sessionMustChange, false)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthRequired exige sessão autenticada nas rotas da API.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) == nil {
			respondError(c, http.StatusUnauthorized, "Não autenticado")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired exige sessão de administrador.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) == nil {
			respondError(c, http.StatusUnauthorized, "Não autenticado")
			c.Abort()
			return
		}
		isAdmin, _ := session.Get(sessionIsAdmin).(bool)
		if !isAdmin {
			respondError(c, http.StatusForbidden, "Acesso negado")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID lê o id do usuário da sessão. Só é chamado atrás de
// AuthRequired, então a chave sempre existe.
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	id, _ := session.Get(sessionUserID).(uint)
	return id
}
