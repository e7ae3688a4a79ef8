package models

import (
	"strings"

	"github.com/kosku-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	fallbackAdminUsername = "admin"
	fallbackAdminPassword = "admin123"
)

// InitDefaultAdmin 在管理员表为空时创建首个账号，已有账号直接跳过。
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = fallbackAdminUsername
	}
	usingFallbackPassword := password == ""
	if usingFallbackPassword {
		password = fallbackAdminPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := Admin{Username: username, PasswordHash: string(hash)}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if usingFallbackPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
