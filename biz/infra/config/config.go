package config

import (
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
)

var config *Config

type Auth struct {
	SecretKey    string
	AccessExpire int64 `json:",default=604800"` // 秒, 默认7天
}

type Mongo struct {
	URL string
	DB  string
}

// Relay 实时连接相关配置
type Relay struct {
	StoreTimeout   time.Duration `json:",default=5s"`  // 单次存储调用超时
	WriteTimeout   time.Duration `json:",default=10s"` // 单帧写超时
	PongWait       time.Duration `json:",default=60s"` // 心跳等待
	SendBuffer     int           `json:",default=256"` // 每个连接的待发送帧数
	MaxMessageSize int64         `json:",default=8192"`
}

// PingPeriod 心跳周期, 需小于PongWait
func (r Relay) PingPeriod() time.Duration {
	return r.PongWait * 9 / 10
}

type Metrics struct {
	ListenOn string `json:",default=:9091"`
	Path     string `json:",default=/metrics"`
}

type CORS struct {
	AllowOrigins []string `json:",optional"`
}

type Config struct {
	service.ServiceConf
	ListenOn string
	Auth     Auth
	Mongo    Mongo
	Cache    cache.CacheConf
	Relay    Relay
	Metrics  Metrics
	CORS     CORS `json:",optional"`
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return config, nil
}

func GetConfig() *Config {
	return config
}
