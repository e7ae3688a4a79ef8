package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kosku-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

// INCR+EXPIRE 原子执行，返回当前计数与剩余窗口秒数
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 固定窗口限流。Redis 未配置或脚本执行
// 失败时放行，限流是保护层而非硬依赖。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		allowed, waitSeconds := checkWindow(c, client, rule, buildRateKey(c, rule, keyFunc))
		if !allowed {
			msg := strings.TrimSpace(rule.Message)
			if msg == "" {
				msg = "请求过于频繁"
			}
			response.Error(c, response.CodeTooManyRequests, fmt.Sprintf("%s，请 %d 秒后再试", msg, waitSeconds))
			c.Abort()
			return
		}
		c.Next()
	}
}

func buildRateKey(c *gin.Context, rule RateLimitRule, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if rule.Prefix != "" {
		key = rule.Prefix + ":" + key
	}
	return key
}

func checkWindow(c *gin.Context, client *redis.Client, rule RateLimitRule, key string) (bool, int) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
	if err != nil {
		return true, 0
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return true, 0
	}
	count, ok := toInt64(values[0])
	if !ok {
		return true, 0
	}
	if count <= int64(rule.MaxRequests) {
		return true, 0
	}

	ttlSeconds, _ := toInt64(values[1])
	waitSeconds := int(ttlSeconds)
	if waitSeconds < 1 {
		waitSeconds = rule.WindowSeconds
	}
	if waitSeconds < 1 {
		waitSeconds = 1
	}
	return false, waitSeconds
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用请求体 JSON 字段 + IP 作为限流 key，
// 同一 IP 穷举不同优惠码或用户名时各自独立计数。
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(readJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// readJSONField 读取 body 中的字符串字段并还原 body 供后续绑定使用。
func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if text, ok := payload[field].(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}
