package admin

import (
	"errors"

	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	token, expiresAt, admin, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_failed", "username", req.Username, "client_ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	requestLog(c).Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdateAdminPassword 修改当前管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeBadRequest, "原密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "修改密码失败", err)
		return
	}

	response.Success(c, nil)
}
