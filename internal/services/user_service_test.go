package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/rubisplatform/rubis-api/internal/interfaces"
	"github.com/rubisplatform/rubis-api/internal/models"
)

// MockUserRepository, UserRepositoryInterface için sahte (mock) bir yapıdır.
type MockUserRepository struct {
	mock.Mock
}

var _ interfaces.UserRepositoryInterface = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(req *models.CreateUserRequest, hashedPassword string) (*models.User, error) {
	args := m.Called(req, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// TestUserService_Register_Success, başarılı kayıt senaryosunu test eder.
func TestUserService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	userService := NewUserService(mockUserRepo)

	req := &models.CreateUserRequest{
		Name:     "Test Kullanıcı",
		Email:    "test@example.com",
		Password: "password123",
	}

	expectedUser := &models.User{ID: 1, Name: req.Name, Email: req.Email}
	mockUserRepo.On("Create", req, mock.AnythingOfType("string")).Return(expectedUser, nil)

	// Act
	user, err := userService.Register(req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, expectedUser, user)
	mockUserRepo.AssertExpectations(t)
}

// TestUserService_Register_Validation, geçersiz girdilerin repository'ye
// hiç gitmeden reddedildiğini test eder.
func TestUserService_Register_Validation(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := NewUserService(mockUserRepo)

	testCases := []struct {
		name string
		req  *models.CreateUserRequest
	}{
		{"boş isim", &models.CreateUserRequest{Name: " ", Email: "a@b.com", Password: "123456"}},
		{"geçersiz email", &models.CreateUserRequest{Name: "Ad", Email: "gecersiz", Password: "123456"}},
		{"kısa şifre", &models.CreateUserRequest{Name: "Ad", Email: "a@b.com", Password: "123"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := userService.Register(tc.req)

			assert.Error(t, err)
			assert.Nil(t, user)
		})
	}

	mockUserRepo.AssertNotCalled(t, "Create")
}

// TestUserService_Login_WrongPassword, yanlış şifreyle girişin
// reddedildiğini test eder.
func TestUserService_Login_WrongPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	userService := NewUserService(mockUserRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("dogru-sifre"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mockUserRepo.On("GetByEmail", "test@example.com").Return(&models.User{
		ID:       1,
		Email:    "test@example.com",
		Password: string(hashed),
	}, nil)

	// Act
	response, err := userService.Login(&models.LoginRequest{
		Email:    "test@example.com",
		Password: "yanlis-sifre",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, response)
	mockUserRepo.AssertExpectations(t)
}

// TestUserService_Login_Success, doğru şifreyle girişin token döndürdüğünü test eder.
func TestUserService_Login_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	userService := NewUserService(mockUserRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("dogru-sifre"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mockUserRepo.On("GetByEmail", "test@example.com").Return(&models.User{
		ID:       1,
		Email:    "test@example.com",
		Password: string(hashed),
	}, nil)

	// Act
	response, err := userService.Login(&models.LoginRequest{
		Email:    "test@example.com",
		Password: "dogru-sifre",
	})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, response)
	assert.NotEmpty(t, response.Token)
	assert.Empty(t, response.User.Password)
	mockUserRepo.AssertExpectations(t)
}
