package repository

import (
	"database/sql"
	"fmt"

	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// UserRepository kullanıcı database işlemleri
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository yeni repository oluşturur
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create yeni kullanıcıyı ve sıfır bakiye satırını birlikte oluşturur.
// Bakiye satırı kayıt anında açılır; ledger operasyonları satırın
// varlığına güvenir (yoksa ErrUserNotFound).
func (r *UserRepository) Create(req *models.CreateUserRequest, hashedPassword string) (*models.User, error) {
	var user models.User

	err := db.WithTransaction(r.db, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO users (name, email, password)
			VALUES ($1, $2, $3)
			RETURNING id, name, email, created_at
		`, req.Name, req.Email, hashedPassword).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("bu email zaten kayıtlı")
			}
			return fmt.Errorf("kullanıcı oluşturulamadı: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO balances (user_id, amount) VALUES ($1, 0)
		`, user.ID); err != nil {
			return fmt.Errorf("bakiye satırı oluşturulamadı: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail email ile kullanıcı bulur
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, name, email, password, created_at FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}
	return &user, nil
}

// GetByID ID ile kullanıcı bulur
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, name, email, password, created_at FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}
	return &user, nil
}
