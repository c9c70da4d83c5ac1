package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app" mapstructure:"app"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka" mapstructure:"kafka"`
	Chat     ChatConfig     `yaml:"chat" mapstructure:"chat"`
	Mail     MailConfig     `yaml:"mail" mapstructure:"mail"`
	Gateway  GatewayConfig  `yaml:"gateway" mapstructure:"gateway"`
	Logger   LoggerConfig   `yaml:"logger" mapstructure:"logger"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Version   string `yaml:"version" mapstructure:"version"`
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`
}

// HTTPConfig HTTP服务配置
type HTTPConfig struct {
	Addr    string `yaml:"addr" mapstructure:"addr"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	PostgreSQL PostgreSQLConfig `yaml:"postgresql" mapstructure:"postgresql"`
}

// PostgreSQLConfig PostgreSQL配置
type PostgreSQLConfig struct {
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	DBName string `yaml:"db_name" mapstructure:"db_name"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	GroupID string   `yaml:"group_id" mapstructure:"group_id"`
}

// ChatConfig 聊天服务（chatroom网关）配置
type ChatConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// MailConfig 邮件发送配置
type MailConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	From   string `yaml:"from" mapstructure:"from"`
}

// GatewayConfig 连接网关实例配置
type GatewayConfig struct {
	InstanceID string `yaml:"instance_id" mapstructure:"instance_id"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// defaultHTTPAddr 各服务的默认监听地址
func defaultHTTPAddr(serviceName string) string {
	switch serviceName {
	case "user-service":
		return ":21001"
	case "friend-service":
		return ":21002"
	case "connect-service":
		return ":21003"
	default:
		panic(fmt.Sprintf("unknown service name: %s, supported: user-service, friend-service, connect-service", serviceName))
	}
}

// LoadConfig 加载配置
// 优先级：环境变量 > config.yaml > 默认值
func LoadConfig(serviceName string) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", serviceName)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.jwt_secret", "amity-dev-secret")
	v.SetDefault("server.http.addr", defaultHTTPAddr(serviceName))
	v.SetDefault("server.http.timeout", "30s")
	v.SetDefault("database.postgresql.dsn", "host=localhost user=postgres password=postgres dbname=amity port=5432 sslmode=disable TimeZone=Asia/Seoul")
	v.SetDefault("database.postgresql.db_name", "amity")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", serviceName+"-group")
	v.SetDefault("chat.base_url", "http://localhost:8001/api/chat/")
	v.SetDefault("mail.from", "no-reply@amity.local")
	v.SetDefault("gateway.instance_id", "")
	v.SetDefault("logger.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment")
		} else {
			panic(fmt.Sprintf("failed to read config file: %v", err))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	// 服务名以进程传入的为准，配置文件里的app.name只作展示
	cfg.App.Name = serviceName
	return cfg
}
