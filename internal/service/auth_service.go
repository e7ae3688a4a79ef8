package service

import (
	"strings"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理员认证服务
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
	}
}

// JWTClaims 管理端令牌声明
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login 用户名密码登录，成功返回 JWT 与过期时间。
// 用户不存在与密码错误统一返回 ErrInvalidCredentials，不泄露账号是否存在。
func (s *AuthService) Login(username, password string) (string, time.Time, *models.Admin, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if admin == nil {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(admin)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, admin, nil
}

func (s *AuthService) issueToken(admin *models.Admin) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ChangePassword 校验旧密码后更新为新密码
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin.PasswordHash = string(hash)
	return s.adminRepo.Update(admin)
}
