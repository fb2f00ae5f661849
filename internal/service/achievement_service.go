package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bibliaplan/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownAchievement é retornado ao gravar um id fora da tabela fixa.
var ErrUnknownAchievement = errors.New("unknown achievement id")

// Milestone é uma conquista da tabela fixa, ordenada por limiar crescente.
type Milestone struct {
	ID        string `json:"id"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Threshold int    `json:"requisito"`
}

// AchievementStatus é um Milestone avaliado contra a contagem de dias.
type AchievementStatus struct {
	Milestone
	Unlocked bool `json:"desbloqueada"`
}

// milestones é a tabela fixa de conquistas. A última exige o plano completo.
var milestones = []Milestone{
	{ID: "primeiro-dia", Titulo: "Primeiro Dia", Descricao: "Complete o primeiro dia", Threshold: 1},
	{ID: "uma-semana", Titulo: "Uma Semana", Descricao: "Complete 7 dias", Threshold: 7},
	{ID: "um-mes", Titulo: "Um Mês", Descricao: "Complete 30 dias", Threshold: 30},
	{ID: "tres-meses", Titulo: "Três Meses", Descricao: "Complete 90 dias", Threshold: 90},
	{ID: "meio-ano", Titulo: "Meio Ano", Descricao: "Complete 180 dias", Threshold: 180},
	{ID: "completo", Titulo: "Jornada Completa", Descricao: "Complete todos os 365 dias", Threshold: 365},
}

// Milestones devolve uma cópia da tabela fixa.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// Evaluate é uma função pura da contagem de dias concluídos para o estado de
// cada conquista, em ordem de limiar crescente.
func Evaluate(completedDays int) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(milestones))
	for _, m := range milestones {
		unlocked := completedDays >= m.Threshold
		if m.ID == "completo" {
			unlocked = completedDays == m.Threshold
		}
		out = append(out, AchievementStatus{Milestone: m, Unlocked: unlocked})
	}
	return out
}

// CheckNew devolve, em ordem de limiar, os ids recém-cruzados que ainda não
// constam do conjunto já concedido. Nunca repete um id já concedido.
func CheckNew(awarded map[string]bool, completedDays int) []string {
	var fresh []string
	for _, status := range Evaluate(completedDays) {
		if status.Unlocked && !awarded[status.ID] {
			fresh = append(fresh, status.ID)
		}
	}
	return fresh
}

// AchievementService persiste conquistas desbloqueadas.
type AchievementService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAchievementService constrói um AchievementService com relógio real.
func NewAchievementService(gdb *gorm.DB) *AchievementService {
	return &AchievementService{db: gdb, now: time.Now}
}

// WithClock troca o relógio do serviço, usado em testes.
func (s *AchievementService) WithClock(now func() time.Time) *AchievementService {
	s.now = now
	return s
}

// ListIDs devolve os ids já desbloqueados pelo usuário.
func (s *AchievementService) ListIDs(userID uint) ([]string, error) {
	var rows []db.Achievement
	if err := s.db.Where("user_id = ?", userID).Order("unlocked_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AchievementID)
	}
	return ids, nil
}

// AwardedSet devolve os ids desbloqueados como conjunto, para CheckNew.
func (s *AchievementService) AwardedSet(userID uint) (map[string]bool, error) {
	ids, err := s.ListIDs(userID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Unlock grava uma conquista. Idempotente: gravar um id já concedido não é erro
// e não altera o carimbo original.
func (s *AchievementService) Unlock(userID uint, achievementID string) error {
	if !knownMilestone(achievementID) {
		return fmt.Errorf("%w: %s", ErrUnknownAchievement, achievementID)
	}

	record := db.Achievement{UserID: userID, AchievementID: achievementID, UnlockedAt: s.now()}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("unlock achievement: %w", err)
	}
	return nil
}

func knownMilestone(id string) bool {
	for _, m := range milestones {
		if m.ID == id {
			return true
		}
	}
	return false
}
