package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bibliaplan/internal/auth"
	"github.com/bibliaplan/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound é retornado quando o usuário não existe.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials cobre username desconhecido e senha incorreta,
	// sem distinguir os dois casos.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername é retornado ao criar um username já existente.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrWrongCurrentPassword é retornado na troca de senha com senha atual errada.
	ErrWrongCurrentPassword = errors.New("current password does not match")
)

// DefaultPassword é a senha inicial de usuários criados pelo administrador.
// O usuário é obrigado a trocá-la no primeiro acesso.
const DefaultPassword = "biblia1234"

// UserService cuida de autenticação e administração de usuários.
type UserService struct {
	db *gorm.DB
}

// UserInput define os campos para criação de usuário pelo administrador.
type UserInput struct {
	Nome     string
	Username string
}

// NewUserService constrói um UserService.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Authenticate valida as credenciais e devolve o usuário. Username
// desconhecido e senha errada produzem o mesmo erro genérico.
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Get devolve um usuário pelo id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// List devolve todos os usuários ordenados por nome.
func (s *UserService) List() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("nome ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create cria um usuário com a senha padrão e a troca obrigatória ativada.
func (s *UserService) Create(input UserInput) (*db.User, error) {
	nome := strings.TrimSpace(input.Nome)
	username := strings.TrimSpace(input.Username)
	if nome == "" || username == "" {
		return nil, fmt.Errorf("nome and username are required")
	}

	var existing db.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	user := db.User{
		Nome:               nome,
		Username:           username,
		PasswordHash:       string(hashed),
		MustChangePassword: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Delete remove o usuário e, em cascata, seu progresso e conquistas.
func (s *UserService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("find user: %w", err)
		}

		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&db.DayProgress{}).Error; err != nil {
			return fmt.Errorf("delete user progress: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&db.ReadReference{}).Error; err != nil {
			return fmt.Errorf("delete user references: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&db.Achievement{}).Error; err != nil {
			return fmt.Errorf("delete user achievements: %w", err)
		}
		if err := tx.Unscoped().Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// ResetPassword troca a senha de um usuário por ação administrativa e reativa
// a troca obrigatória no próximo acesso.
func (s *UserService) ResetPassword(id uint, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	result := s.db.Model(&db.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash":        string(hashed),
		"must_change_password": true,
	})
	if result.Error != nil {
		return fmt.Errorf("reset password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangeOwnPassword troca a senha do próprio usuário após conferir a senha
// atual e a política. A limpeza da flag de troca obrigatória acontece na mesma
// escrita que atualiza o hash.
func (s *UserService) ChangeOwnPassword(id uint, currentPassword, newPassword string) error {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.Model(&user).Updates(map[string]any{
		"password_hash":        string(hashed),
		"must_change_password": false,
	}).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
