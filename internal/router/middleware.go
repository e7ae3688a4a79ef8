package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-CSRF-Token",
	}
)

// CORSMiddleware 跨域中间件，预检请求直接以 204 短路。
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}
	methodsValue := strings.Join(methods, ", ")
	headersValue := strings.Join(headers, ", ")

	return func(c *gin.Context) {
		writeCORSHeaders(c, cfg, origins, methodsValue, headersValue)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func writeCORSHeaders(c *gin.Context, cfg config.CORSConfig, origins []string, methodsValue, headersValue string) {
	header := c.Writer.Header()
	if origin := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); origin != "" {
		header.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			header.Add("Vary", "Origin")
		}
	}
	if cfg.AllowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	header.Set("Access-Control-Allow-Methods", methodsValue)
	header.Set("Access-Control-Allow-Headers", headersValue)
	if cfg.MaxAge > 0 {
		header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
}

// resolveAllowedOrigin 计算响应的 Allow-Origin。携带凭证时通配符
// 必须回显具体来源，浏览器拒绝 "*" 与 credentials 的组合。
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 透传或生成请求 ID，写入 context 与响应头。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 每个请求一条结构化访问日志
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	if value, ok := c.Get(requestIDKey); ok {
		if requestID, ok := value.(string); ok {
			return requestID
		}
	}
	return ""
}

// JWTAuthMiddleware 管理端鉴权：校验 HS256 令牌并确认管理员仍然存在，
// 通过后把 admin_id 与 username 写入请求上下文。
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "JWT 密钥未配置")
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, ok := parseAdminClaims(tokenString, secretKey)
		if !ok || adminRepo == nil {
			abortUnauthorized(c, "令牌无效")
			return
		}
		admin, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || admin == nil {
			abortUnauthorized(c, "令牌无效")
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "缺少认证头")
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		abortUnauthorized(c, "认证头格式错误")
		return "", false
	}
	return parts[1], true
}

func parseAdminClaims(tokenString, secretKey string) (*service.JWTClaims, bool) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &service.JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid || claims.AdminID == 0 {
		return nil, false
	}
	return claims, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}
