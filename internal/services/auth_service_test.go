// internal/services/auth_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentloop/rentloop-backend/internal/config"
	"github.com/rentloop/rentloop-backend/internal/models"
)

type AuthServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.TenantProfile{},
	))
	s.db = db

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 1
	cfg.JWT.RefreshTokenTTL = 24
	s.svc = NewAuthService(db, cfg)
}

func (s *AuthServiceSuite) register() *AuthResponse {
	resp, err := s.svc.Register(&RegisterRequest{
		CompanyName: "Acme Property Management",
		Username:    "acmeadmin",
		Email:       "admin@acme.test",
		Password:    "Str0ngPass!",
		FirstName:   "Ada",
		LastName:    "Admin",
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceSuite) TestRegisterCreatesCompanyAndAdmin() {
	resp := s.register()

	s.Equal(models.UserRoleCompanyAdmin, resp.User.Role)
	s.Require().NotNil(resp.User.CompanyID)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)

	var companyCount int64
	s.db.Model(&models.Company{}).Count(&companyCount)
	s.Equal(int64(1), companyCount)
}

func (s *AuthServiceSuite) TestRegisterRejectsDuplicateEmail() {
	s.register()

	_, err := s.svc.Register(&RegisterRequest{
		CompanyName: "Other Co",
		Username:    "otheradmin",
		Email:       "admin@acme.test",
		Password:    "Str0ngPass!",
	})
	s.Error(err)
}

func (s *AuthServiceSuite) TestLogin() {
	s.register()

	resp, err := s.svc.Login(&LoginRequest{
		Email:    "admin@acme.test",
		Password: "Str0ngPass!",
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)

	_, err = s.svc.Login(&LoginRequest{
		Email:    "admin@acme.test",
		Password: "wrong-password",
	})
	s.Error(err)
}

func (s *AuthServiceSuite) TestRefreshToken() {
	resp := s.register()

	refreshed, err := s.svc.RefreshToken(resp.RefreshToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, refreshed.User.ID)

	_, err = s.svc.RefreshToken("not-a-token")
	s.Error(err)
}

func (s *AuthServiceSuite) TestCreateTenantUserGetsProfile() {
	resp := s.register()
	actx := CompanyMemberContext(resp.User.ID, *resp.User.CompanyID, models.UserRoleCompanyAdmin)

	user, err := s.svc.CreateUser(actx, &CreateUserRequest{
		Username: "alice",
		Email:    "alice@tenant.test",
		Password: "Str0ngPass!",
		Role:     models.UserRoleTenant,
	})
	s.Require().NoError(err)

	var profile models.TenantProfile
	s.Require().NoError(s.db.First(&profile, "user_id = ?", user.ID).Error)
	s.Equal(models.TenantStatusPending, profile.Status)
	s.Equal(*resp.User.CompanyID, profile.CompanyID)
}

func (s *AuthServiceSuite) TestCreateUserRequiresCompanyAdmin() {
	resp := s.register()
	managerCtx := CompanyMemberContext(uuid.New(), *resp.User.CompanyID, models.UserRoleManager)

	_, err := s.svc.CreateUser(managerCtx, &CreateUserRequest{
		Username: "bob",
		Email:    "bob@tenant.test",
		Password: "Str0ngPass!",
		Role:     models.UserRoleTenant,
	})
	s.ErrorIs(err, ErrInsufficientPermissions)
}

func (s *AuthServiceSuite) TestNobodyCreatesSuperAdmins() {
	resp := s.register()
	actx := CompanyMemberContext(resp.User.ID, *resp.User.CompanyID, models.UserRoleCompanyAdmin)

	_, err := s.svc.CreateUser(actx, &CreateUserRequest{
		Username: "evil",
		Email:    "evil@acme.test",
		Password: "Str0ngPass!",
		Role:     models.UserRoleSuperAdmin,
	})
	s.ErrorIs(err, ErrInsufficientPermissions)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}
