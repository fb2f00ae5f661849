package main

import (
	"fmt"
	"log"

	"github.com/bibliaplan/internal/config"
	"github.com/bibliaplan/internal/db"
	"github.com/bibliaplan/internal/plan"
	"github.com/bibliaplan/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Gerador de dados de demonstração: cria um administrador, alguns leitores e
// progresso variado para exercitar o painel administrativo em desenvolvimento.
func main() {
	cfg := config.Load()

	if err := plan.Load(); err != nil {
		log.Fatal("falha ao carregar o plano de leitura:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("falha ao inicializar o banco:", err)
	}

	fmt.Println("Gerando dados de demonstração...")

	if err := db.EnsureAdmin("Administrador", "admin", "admin-demo!"); err != nil {
		log.Fatal("falha ao criar administrador:", err)
	}

	readers := []struct {
		nome     string
		username string
		days     int
	}{
		{"Ana Souza", "ana", 45},
		{"Bruno Lima", "bruno", 7},
		{"Carla Mendes", "carla", 0},
	}

	progress := service.NewProgressService(db.DB)
	achievements := service.NewAchievementService(db.DB)

	for _, reader := range readers {
		user, err := createReader(reader.nome, reader.username)
		if err != nil {
			log.Fatal("falha ao criar leitor:", err)
		}

		for day := 1; day <= reader.days; day++ {
			total := plan.TotalReferences(day)
			indices := make([]int, total)
			for i := range indices {
				indices[i] = i
			}
			if err := progress.BulkSetReferencesRead(user.ID, day, indices); err != nil {
				log.Fatal("falha ao marcar leituras:", err)
			}
			if _, err := progress.RecomputeDay(user.ID, day); err != nil {
				log.Fatal("falha ao recalcular dia:", err)
			}
		}

		awarded, err := achievements.AwardedSet(user.ID)
		if err != nil {
			log.Fatal("falha ao carregar conquistas:", err)
		}
		for _, id := range service.CheckNew(awarded, reader.days) {
			if err := achievements.Unlock(user.ID, id); err != nil {
				log.Fatal("falha ao desbloquear conquista:", err)
			}
		}

		fmt.Printf("  %s (%s): %d dias concluídos\n", reader.nome, reader.username, reader.days)
	}

	fmt.Println("Dados de demonstração prontos.")
	fmt.Println("Administrador: admin / admin-demo!")
	fmt.Println("Leitores: senha", service.DefaultPassword)
}

func createReader(nome, username string) (*db.User, error) {
	var existing db.User
	if err := db.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return &existing, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(service.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Nome:               nome,
		Username:           username,
		PasswordHash:       string(hashed),
		MustChangePassword: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
