package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslMode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type SessionConfig struct {
	TTLSeconds int `mapstructure:"ttlSeconds"`
}

func (s SessionConfig) TTL() time.Duration { return time.Duration(s.TTLSeconds) * time.Second }

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	PublicBaseURL   string `mapstructure:"publicBaseURL"`
}

type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	S3        S3Config        `mapstructure:"s3"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	WebOrigin string          `mapstructure:"webOrigin"`
}

// LoadEnv pulls a local .env into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
}

// LoadConfig reads config.yaml from path and overrides values from the
// environment. A missing file is fine; the environment alone is enough.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.env", "APP_ENV")
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.name", "DB_NAME")
	viper.BindEnv("database.sslMode", "DB_SSLMODE")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("session.ttlSeconds", "SESSION_TTL_SECONDS")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.publicBaseURL", "S3_PUBLIC_BASE_URL")
	viper.BindEnv("bootstrap.adminEmail", "BOOTSTRAP_ADMIN_EMAIL")
	viper.BindEnv("bootstrap.adminPassword", "BOOTSTRAP_ADMIN_PASSWORD")
	viper.BindEnv("webOrigin", "WEB_ORIGIN")

	viper.SetDefault("server.port", "3001")
	viper.SetDefault("server.env", "dev")
	viper.SetDefault("database.host", "127.0.0.1")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.sslMode", "disable")
	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("session.ttlSeconds", 86400)
	viper.SetDefault("webOrigin", "http://localhost:3000")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
