package db

import (
	"time"

	"gorm.io/gorm"
)

// Achievement registra uma conquista desbloqueada por um usuário.
// (usuário, conquista) é único; a gravação é idempotente na camada de serviço.
type Achievement struct {
	gorm.Model
	UserID        uint      `gorm:"not null;uniqueIndex:idx_achievement_user_id;index"`
	AchievementID string    `gorm:"not null;uniqueIndex:idx_achievement_user_id"`
	UnlockedAt    time.Time `gorm:"not null"`
}
