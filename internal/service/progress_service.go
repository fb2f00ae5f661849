package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bibliaplan/internal/db"
	"github.com/bibliaplan/internal/plan"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidDay é retornado para dias fora do intervalo 1..365.
	ErrInvalidDay = errors.New("day outside reading plan range")
	// ErrIndexOutOfRange é retornado para índices fora das referências do dia.
	ErrIndexOutOfRange = errors.New("reference index out of range")
)

// ProgressService concentra leitura e escrita do progresso por usuário.
// Toda operação recebe o id do usuário vindo da sessão; o serviço nunca
// confia em ids enviados pelo cliente.
type ProgressService struct {
	db  *gorm.DB
	now func() time.Time
}

// DayState é a visão de um dia com estado persistido.
type DayState struct {
	Day         int        `json:"dia"`
	Completed   bool       `json:"concluido"`
	CompletedAt *time.Time `json:"data_conclusao"`
}

// Summary resume o progresso anual de um usuário.
type Summary struct {
	TotalDays     int `json:"total_dias"`
	CompletedDays int `json:"dias_concluidos"`
	RemainingDays int `json:"dias_restantes"`
	Percent       int `json:"percentual"`
	LongestStreak int `json:"sequencia"`
}

// UserOverview é a linha do painel administrativo por usuário.
type UserOverview struct {
	UserID        uint       `json:"id"`
	Nome          string     `json:"nome"`
	Username      string     `json:"username"`
	CompletedDays int        `json:"dias_concluidos"`
	LastReading   *time.Time `json:"ultima_leitura"`
}

// NewProgressService constrói um ProgressService com relógio real.
func NewProgressService(gdb *gorm.DB) *ProgressService {
	return &ProgressService{db: gdb, now: time.Now}
}

// WithClock troca o relógio do serviço, usado em testes.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

func validDay(day int) error {
	if day < 1 || day > plan.TotalDays {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}

// GetProgress retorna os dias com estado persistido, em ordem crescente.
// Dias ausentes significam não concluído.
func (s *ProgressService) GetProgress(userID uint) ([]DayState, error) {
	var rows []db.DayProgress
	if err := s.db.Where("user_id = ?", userID).Order("day ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	states := make([]DayState, 0, len(rows))
	for _, row := range rows {
		states = append(states, DayState{Day: row.Day, Completed: row.Completed, CompletedAt: row.CompletedAt})
	}
	return states, nil
}

// SetDayCompleted grava a conclusão de um dia (upsert). O carimbo de tempo é
// definido ao concluir e limpo ao desfazer a conclusão.
func (s *ProgressService) SetDayCompleted(userID uint, day int, completed bool) error {
	if err := validDay(day); err != nil {
		return err
	}

	var completedAt *time.Time
	if completed {
		now := s.now()
		completedAt = &now
	}

	record := db.DayProgress{UserID: userID, Day: day, Completed: completed, CompletedAt: completedAt}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("upsert day progress: %w", err)
	}
	return nil
}

// GetReadReferences retorna o conjunto de índices lidos por dia.
func (s *ProgressService) GetReadReferences(userID uint) (map[int][]int, error) {
	var rows []db.ReadReference
	if err := s.db.Where("user_id = ?", userID).
		Order("day ASC, ref_index ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list read references: %w", err)
	}

	read := make(map[int][]int)
	for _, row := range rows {
		read[row.Day] = append(read[row.Day], row.RefIndex)
	}
	return read, nil
}

// SetReferenceRead marca ou desmarca um índice de leitura. Idempotente nas
// duas direções.
func (s *ProgressService) SetReferenceRead(userID uint, day, index int, read bool) error {
	if err := validDay(day); err != nil {
		return err
	}
	if index < 0 || index >= plan.TotalReferences(day) {
		return fmt.Errorf("index %d, day %d: %w", index, day, ErrIndexOutOfRange)
	}

	if read {
		record := db.ReadReference{UserID: userID, Day: day, RefIndex: index}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return fmt.Errorf("mark reference read: %w", err)
		}
		return nil
	}

	if err := s.db.Unscoped().
		Where("user_id = ? AND day = ? AND ref_index = ?", userID, day, index).
		Delete(&db.ReadReference{}).Error; err != nil {
		return fmt.Errorf("unmark reference read: %w", err)
	}
	return nil
}

// BulkSetReferencesRead substitui o conjunto de índices lidos de um dia em uma
// única transação. Usado por "marcar todos" / "desmarcar todos".
func (s *ProgressService) BulkSetReferencesRead(userID uint, day int, indices []int) error {
	if err := validDay(day); err != nil {
		return err
	}

	total := plan.TotalReferences(day)
	for _, idx := range indices {
		if idx < 0 || idx >= total {
			return fmt.Errorf("index %d, day %d: %w", idx, day, ErrIndexOutOfRange)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("user_id = ? AND day = ?", userID, day).
			Delete(&db.ReadReference{}).Error; err != nil {
			return fmt.Errorf("clear day references: %w", err)
		}

		for _, idx := range indices {
			record := db.ReadReference{UserID: userID, Day: day, RefIndex: idx}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("insert read reference: %w", err)
			}
		}
		return nil
	})
}

// DeriveCompleted calcula a conclusão a partir da cobertura de referências.
// Um dia está concluído quando todos os índices do plano foram lidos.
func (s *ProgressService) DeriveCompleted(userID uint, day int) (bool, error) {
	if err := validDay(day); err != nil {
		return false, err
	}

	total := plan.TotalReferences(day)
	if total == 0 {
		return false, nil
	}

	var count int64
	if err := s.db.Model(&db.ReadReference{}).
		Where("user_id = ? AND day = ?", userID, day).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count read references: %w", err)
	}
	return int(count) == total, nil
}

// RecomputeDay deriva a conclusão do dia e regrava o booleano armazenado
// quando ele diverge. A derivação é a fonte de verdade; o booleano é cache.
func (s *ProgressService) RecomputeDay(userID uint, day int) (bool, error) {
	derived, err := s.DeriveCompleted(userID, day)
	if err != nil {
		return false, err
	}

	var stored db.DayProgress
	err = s.db.Where("user_id = ? AND day = ?", userID, day).First(&stored).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if derived {
			return derived, s.SetDayCompleted(userID, day, true)
		}
		return derived, nil
	case err != nil:
		return false, fmt.Errorf("load day progress: %w", err)
	}

	if stored.Completed != derived {
		return derived, s.SetDayCompleted(userID, day, derived)
	}
	return derived, nil
}

// CompletedDayCount conta os dias concluídos do usuário.
func (s *ProgressService) CompletedDayCount(userID uint) (int, error) {
	var count int64
	if err := s.db.Model(&db.DayProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed days: %w", err)
	}
	return int(count), nil
}

// ClearAllProgress apaga todo progresso e conquistas do usuário ("novo ciclo").
// Irreversível.
func (s *ProgressService) ClearAllProgress(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&db.DayProgress{}).Error; err != nil {
			return fmt.Errorf("clear day progress: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&db.ReadReference{}).Error; err != nil {
			return fmt.Errorf("clear read references: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&db.Achievement{}).Error; err != nil {
			return fmt.Errorf("clear achievements: %w", err)
		}
		return nil
	})
}

// Summary calcula as estatísticas anuais do usuário.
func (s *ProgressService) Summary(userID uint) (*Summary, error) {
	states, err := s.GetProgress(userID)
	if err != nil {
		return nil, err
	}

	completedByDay := make(map[int]bool, len(states))
	completed := 0
	for _, st := range states {
		if st.Completed {
			completedByDay[st.Day] = true
			completed++
		}
	}

	return &Summary{
		TotalDays:     plan.TotalDays,
		CompletedDays: completed,
		RemainingDays: plan.TotalDays - completed,
		Percent:       completed * 100 / plan.TotalDays,
		LongestStreak: longestStreak(completedByDay),
	}, nil
}

// AllUsersOverview agrega o progresso de todos os usuários não administradores
// para o painel administrativo.
func (s *ProgressService) AllUsersOverview() ([]UserOverview, error) {
	var rows []UserOverview
	if err := s.db.Model(&db.User{}).
		Select(`users.id AS user_id, users.nome AS nome, users.username AS username,
			COUNT(CASE WHEN day_progresses.completed THEN 1 END) AS completed_days,
			MAX(day_progresses.completed_at) AS last_reading`).
		Joins("LEFT JOIN day_progresses ON day_progresses.user_id = users.id AND day_progresses.deleted_at IS NULL").
		Where("users.is_admin = ?", false).
		Group("users.id").
		Order("completed_days DESC, users.nome ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate user progress: %w", err)
	}
	return rows, nil
}

// longestStreak devolve a maior sequência de dias consecutivos concluídos.
func longestStreak(completed map[int]bool) int {
	var current, longest int
	for day := 1; day <= plan.TotalDays; day++ {
		if completed[day] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
