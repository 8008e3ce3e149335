package config

import "errors"

var (
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrInvalidDatabaseConfig = errors.New("invalid database configuration")
)

// Validate 检查启动所需的关键配置
func Validate() error {
	if GetInt("server.port") <= 0 {
		return ErrInvalidConfig
	}
	if GetDSN() == "" {
		return ErrInvalidDatabaseConfig
	}
	return nil
}
