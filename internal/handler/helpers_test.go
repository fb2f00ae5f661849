package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bibliaplan/internal/auth"
	"github.com/bibliaplan/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.DayProgress{}, &db.ReadReference{}, &db.Achievement{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// newTestRouter monta o mesmo conjunto de rotas do servidor, com sessão em
// cookie de teste.
func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("biblia_session", cookie.NewStore([]byte("test-secret"))))

	apiGroup := r.Group("/api")
	apiGroup.POST("/login", api.Login)
	apiGroup.POST("/logout", api.Logout)
	apiGroup.GET("/session", api.Session)
	apiGroup.GET("/server-time", api.ServerTime)
	apiGroup.GET("/plano", api.GetPlan)
	apiGroup.GET("/plano/:dia", api.GetPlanDay)

	authed := apiGroup.Group("")
	authed.Use(AuthRequired())
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

	admin := apiGroup.Group("")
	admin.Use(AdminRequired())
	admin.GET("/usuarios", api.ListUsers)
	admin.POST("/usuarios", api.CreateUser)
	admin.DELETE("/usuarios/:id", api.DeleteUser)
	admin.GET("/progresso/todos", api.AllProgress)
	admin.GET("/progresso/usuario/:id", api.UserProgress)
	admin.POST("/admin/usuarios/:id/senha", api.ResetUserPassword)
	admin.POST("/admin/progresso/:userId", api.AdminSaveProgress)

	return r
}

// apiClient empacota o engine e carrega o cookie de sessão entre requisições.
type apiClient struct {
	router  *gin.Engine
	cookies []*http.Cookie
}

func newAPIClient(api *API) *apiClient {
	return &apiClient{router: newTestRouter(api)}
}

func (c *apiClient) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	c.router.ServeHTTP(recorder, req)

	if set := recorder.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response: %v\nbody=%s", err, recorder.Body.String())
	}
}

func seedUser(t *testing.T, gdb *gorm.DB, nome, username, password string, isAdmin bool) db.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Nome: nome, Username: username, PasswordHash: string(hashed), IsAdmin: isAdmin}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func login(t *testing.T, client *apiClient, username, senha string) *httptest.ResponseRecorder {
	t.Helper()
	return client.do(t, http.MethodPost, "/api/login", gin.H{"username": username, "senha": senha})
}

func mustLogin(t *testing.T, client *apiClient, username, senha string) {
	t.Helper()
	recorder := login(t, client, username, senha)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
}

func newTestAPI(gdb *gorm.DB) *API {
	return NewAPI(gdb, auth.NewLoginLimiter())
}
