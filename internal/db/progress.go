package db

import (
	"time"

	"gorm.io/gorm"
)

// DayProgress guarda a conclusão de um dia do plano para um usuário.
// Existe no máximo uma linha por (usuário, dia).
type DayProgress struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_progress_user_day;index"`
	Day         int  `gorm:"not null;uniqueIndex:idx_progress_user_day"`
	Completed   bool `gorm:"not null;default:false"`
	CompletedAt *time.Time
}

// ReadReference marca uma referência individual de um dia como lida.
// O conjunto de linhas de um (usuário, dia) forma o conjunto de índices lidos.
type ReadReference struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_read_ref_user_day_idx;index"`
	Day      int  `gorm:"not null;uniqueIndex:idx_read_ref_user_day_idx"`
	RefIndex int  `gorm:"not null;uniqueIndex:idx_read_ref_user_day_idx"`
}
