package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// AppConfig reúne a configuração necessária para subir o serviço.
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	SessionSecret string
	Production    bool
	AdminNome     string
	AdminUsername string
	AdminPassword string
}

// Load lê a configuração de um .env opcional e das variáveis de ambiente,
// com padrões seguros para desenvolvimento. Sem SESSION_SECRET definido, um
// segredo aleatório é gerado e as sessões não sobrevivem a reinícios.
func Load() AppConfig {
	// Ausência de .env não é erro; produção configura só por ambiente.
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "biblia.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = uuid.NewString()
	}

	adminNome := strings.TrimSpace(os.Getenv("ADMIN_NOME"))
	if adminNome == "" {
		adminNome = "Administrador"
	}

	adminUsername := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	adminPassword := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  databasePath,
		SessionSecret: sessionSecret,
		Production:    strings.TrimSpace(os.Getenv("APP_ENV")) == "production",
		AdminNome:     adminNome,
		AdminUsername: adminUsername,
		AdminPassword: adminPassword,
	}
}
