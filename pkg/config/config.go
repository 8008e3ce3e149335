package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	config = viper.New()
	once   sync.Once
)

func init() {
	// 未调用Init时也能拿到默认值（测试、命令行工具）
	setDefaults()
}

// Init 初始化配置
func Init(configFiles ...string) error {
	var err error
	once.Do(func() {
		configFile := "config.yaml"
		if len(configFiles) > 0 {
			configFile = configFiles[0]
		}
		config.SetConfigFile(configFile)

		// 环境变量覆盖，如 BLOG_SECURITY_API_KEY
		config.SetEnvPrefix("blog")
		config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		config.AutomaticEnv()

		// 读取配置文件
		if err = config.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config file failed: %w", err)
			return
		}

		// 监听配置文件变化
		config.WatchConfig()
	})
	return err
}

// setDefaults 设置默认值
func setDefaults() {
	config.SetDefault("server.port", 8080)
	config.SetDefault("server.app_name", "notion_blog")
	config.SetDefault("server.node_id", 1)
	config.SetDefault("server.print_routes", false)
	config.SetDefault("server.body_limit", 4*1024*1024)

	config.SetDefault("database.type", "sqlite")
	config.SetDefault("database.dsn", "data/blog.db")
	config.SetDefault("database.host", "localhost")
	config.SetDefault("database.port", 5432)
	config.SetDefault("database.user", "postgres")
	config.SetDefault("database.password", "postgres")
	config.SetDefault("database.dbname", "notion_blog")
	config.SetDefault("database.max_idle_conns", 10)
	config.SetDefault("database.max_open_conns", 100)
	config.SetDefault("database.conn_max_lifetime", 3600)
	config.SetDefault("database.log_level", "warn")

	config.SetDefault("log.filename", "logs/app.log")
	config.SetDefault("log.level", "info")
	config.SetDefault("log.max_size", 100)
	config.SetDefault("log.max_backups", 3)
	config.SetDefault("log.max_age", 28)
	config.SetDefault("log.compress", true)
	config.SetDefault("log.console", false)

	config.SetDefault("security.allowed_origins", "*")
	config.SetDefault("security.api_key", "")

	config.SetDefault("rate_limit.enabled", true)
	config.SetDefault("rate_limit.max_requests", 600)
	config.SetDefault("rate_limit.duration", 60)

	config.SetDefault("cache.redis.enabled", false)
	config.SetDefault("cache.redis.host", "localhost")
	config.SetDefault("cache.redis.port", 6379)
	config.SetDefault("cache.redis.password", "")
	config.SetDefault("cache.redis.db", 0)
	config.SetDefault("cache.redis.pool_size", 10)

	config.SetDefault("preview.endpoint", "")
	config.SetDefault("preview.timeout", 5)
	config.SetDefault("preview.cache_ttl", 86400)
	config.SetDefault("preview.concurrency", 4)

	config.SetDefault("render.max_depth", 32)
}

// GetString 获取字符串配置值
func GetString(key string) string {
	return config.GetString(key)
}

// GetInt 获取整数配置值
func GetInt(key string) int {
	return config.GetInt(key)
}

// GetUint64 获取64位无符号整数配置值
func GetUint64(key string) uint64 {
	return config.GetUint64(key)
}

// GetBool 获取布尔配置值
func GetBool(key string) bool {
	return config.GetBool(key)
}

// GetSeconds 以秒为单位读取时长配置
func GetSeconds(key string) time.Duration {
	return time.Duration(config.GetInt64(key)) * time.Second
}

// Set 设置配置值
func Set(key string, value interface{}) {
	config.Set(key, value)
}

// GetDSN 获取数据库连接字符串
func GetDSN() string {
	dbType := GetString("database.type")
	switch strings.ToLower(dbType) {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			GetString("database.host"),
			GetInt("database.port"),
			GetString("database.user"),
			GetString("database.password"),
			GetString("database.dbname"),
		)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			GetString("database.user"),
			GetString("database.password"),
			GetString("database.host"),
			GetInt("database.port"),
			GetString("database.dbname"),
		)
	case "sqlite":
		return GetString("database.dsn")
	default:
		return ""
	}
}

// GetServerAddress 获取服务器地址
func GetServerAddress() string {
	return fmt.Sprintf(":%d", GetInt("server.port"))
}
