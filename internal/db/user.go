package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User é um usuário do plano de leitura.
type User struct {
	gorm.Model
	Nome               string `gorm:"not null"`
	Username           string `gorm:"unique;not null"`
	PasswordHash       string `gorm:"not null"`
	IsAdmin            bool   `gorm:"not null;default:false"`
	MustChangePassword bool   `gorm:"not null;default:false"`
}

// EnsureAdmin cria o usuário administrador inicial caso ainda não exista.
// Nome de usuário ou senha vazios desativam o bootstrap.
func EnsureAdmin(nome, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	if strings.TrimSpace(nome) == "" {
		nome = "Administrador"
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{
			Nome:         strings.TrimSpace(nome),
			Username:     trimmedUser,
			PasswordHash: string(hashed),
			IsAdmin:      true,
		}).Error
	}

	return nil
}
