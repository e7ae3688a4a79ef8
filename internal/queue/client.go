package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/constants"

	"github.com/hibiken/asynq"
)

// DefaultQueue 默认队列名称
const DefaultQueue = constants.QueueDefault

// Client 队列客户端封装。队列未启用时所有入队操作都是 no-op，
// 对账与清理退化为仅依赖 worker 的周期任务。
type Client struct {
	client       *asynq.Client
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{defaultQueue: DefaultQueue}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.client = asynq.NewClient(redisOptFromConfig(cfg))
	return c, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err := c.client.Enqueue(task, options...)
	return err
}

// EnqueueCouponRecount 推送优惠码对账任务
func (c *Client) EnqueueCouponRecount(payload CouponRecountPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewCouponRecountTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, opts...)
}

// EnqueueReservationTimeoutSweep 延迟 delay 后执行一次超时预留清理
func (c *Client) EnqueueReservationTimeoutSweep(payload ReservationTimeoutSweepPayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewReservationTimeoutSweepTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, asynq.ProcessIn(delay))
}

// BuildServerConfig 生成队列服务端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return redisOptFromConfig(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func redisOptFromConfig(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
