package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rubisplatform/rubis-api/internal/auth"
	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// UserService kullanıcı business logic'i
type UserService struct {
	userRepo interfaces.UserRepositoryInterface
}

// NewUserService yeni service oluşturur
func NewUserService(userRepo interfaces.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register yeni kullanıcı kaydeder; bakiye satırı kayıtla birlikte açılır
func (s *UserService) Register(req *models.CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("isim boş olamaz")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("geçersiz email formatı")
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("şifre en az 6 karakter olmalı")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("şifre hash'lenemedi: %w", err)
	}

	return s.userRepo.Create(req, string(hashedPassword))
}

// Login kullanıcı girişi yapar ve JWT token döner
func (s *UserService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("email veya şifre hatalı")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("email veya şifre hatalı")
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("token oluşturulamadı: %w", err)
	}

	user.Password = ""
	return &models.LoginResponse{User: user, Token: token}, nil
}

// GetUserByID ID ile kullanıcı getirir
func (s *UserService) GetUserByID(userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
