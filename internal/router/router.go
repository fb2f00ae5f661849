package router

import (
	"net/http"

	"github.com/bibliaplan/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// sessionMaxAge mantém a sessão por 24 horas, como o cliente espera.
const sessionMaxAge = 24 * 60 * 60

// SetupRouter configura o engine do Gin com sessões e todas as rotas da API.
// production ativa cookie Secure e SameSite=Strict.
func SetupRouter(api *handler.API, sessionSecret string, production bool) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(sessionSecret))
	sameSite := http.SameSiteLaxMode
	if production {
		sameSite = http.SameSiteStrictMode
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	})
	r.Use(sessions.Sessions("biblia_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/login", api.Login)
		apiGroup.POST("/logout", api.Logout)
		apiGroup.GET("/session", api.Session)
		apiGroup.GET("/server-time", api.ServerTime)
		apiGroup.GET("/plano", api.GetPlan)
		apiGroup.GET("/plano/:dia", api.GetPlanDay)

		// Rotas autenticadas: o usuário alvo vem sempre da sessão.
		authed := apiGroup.Group("")
		authed.Use(handler.AuthRequired())
		{
			authed.GET("/progresso", api.GetProgress)
			authed.POST("/progresso", api.SaveProgress)
			authed.POST("/progresso/limpar", api.ClearProgress)
			authed.GET("/progresso/resumo", api.GetSummary)

			authed.GET("/referencias", api.GetReferences)
			authed.POST("/referencias", api.SaveReference)
			authed.PUT("/referencias/:dia", api.BulkSaveReferences)

			authed.GET("/conquistas", api.GetAchievements)
			authed.POST("/conquistas", api.SaveAchievement)
			authed.GET("/conquistas/avaliar", api.EvaluateAchievements)

			authed.POST("/usuarios/minha-senha", api.ChangeOwnPassword)
		}

		// Rotas administrativas: único lugar onde o id alvo vem da URL.
		admin := apiGroup.Group("")
		admin.Use(handler.AdminRequired())
		{
			admin.GET("/usuarios", api.ListUsers)
			admin.POST("/usuarios", api.CreateUser)
			admin.DELETE("/usuarios/:id", api.DeleteUser)

			admin.GET("/progresso/todos", api.AllProgress)
			admin.GET("/progresso/usuario/:id", api.UserProgress)
			// As rotas de escrita administrativas vivem sob /admin para não
			// colidirem com os segmentos estáticos das rotas do próprio usuário.
			admin.POST("/admin/usuarios/:id/senha", api.ResetUserPassword)
			admin.POST("/admin/progresso/:userId", api.AdminSaveProgress)
		}
	}

	return r
}
