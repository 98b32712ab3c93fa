package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm/logger"
)

type Config struct {
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Email    EmailConfig    `json:"email"`
	Company  CompanyConfig  `json:"company"`
	Estimate EstimateConfig `json:"estimate"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

type DatabaseConfig struct {
	Host               string          `json:"host"`
	Port               int             `json:"port"`
	Database           string          `json:"database"`
	Username           string          `json:"username"`
	Password           string          `json:"password"`
	MaxOpenConns       int             `json:"max_open_conns"`
	MaxIdleConns       int             `json:"max_idle_conns"`
	ConnMaxLifetime    time.Duration   `json:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration   `json:"conn_max_idle_time"`
	SlowQueryThreshold time.Duration   `json:"slow_query_threshold"`
	EnableQueryLogging bool            `json:"enable_query_logging"`
	LogLevel           logger.LogLevel `json:"-"` // Not serializable
	PrepareStmt        bool            `json:"prepare_stmt"`
}

type ServerConfig struct {
	Port    int    `json:"port"`
	Host    string `json:"host"`
	BaseURL string `json:"base_url"`
}

type EmailConfig struct {
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
	UseTLS       bool   `json:"use_tls"`
}

// CompanyConfig overrides the company identity printed on estimates
type CompanyConfig struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	License string `json:"license"`
}

type EstimateConfig struct {
	NumberPrefix        string  `json:"number_prefix"`
	DefaultMarkupRate   float64 `json:"default_markup_rate"`
	DefaultTaxRate      float64 `json:"default_tax_rate"`
	DefaultValidityDays int     `json:"default_validity_days"`
}

type SecurityConfig struct {
	SessionTimeout    int    `json:"session_timeout"`
	PasswordMinLength int    `json:"password_min_length"`
	MaxLoginAttempts  int    `json:"max_login_attempts"`
	LockoutDuration   int    `json:"lockout_duration"`
	EncryptionKey     string `json:"encryption_key"`
}

type LoggingConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSize    int    `json:"max_size"`
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	// Start with default config
	config := getDefaultConfig()

	// Override with environment variables if they exist
	loadFromEnvironment(config)

	// Try to load from file if it exists
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, err
		}
		// Override again with environment variables to give them priority
		loadFromEnvironment(config)
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

func getDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:               "localhost",
			Port:               3306,
			Database:           "builddesk",
			Username:           "root",
			Password:           "",
			MaxOpenConns:       25,
			MaxIdleConns:       5,
			ConnMaxLifetime:    5 * time.Minute,
			ConnMaxIdleTime:    5 * time.Minute,
			SlowQueryThreshold: 500 * time.Millisecond,
			EnableQueryLogging: false,
			LogLevel:           logger.Warn,
			PrepareStmt:        true,
		},
		Server: ServerConfig{
			Port:    8080,
			Host:    "localhost",
			BaseURL: "http://localhost:8080",
		},
		Email: EmailConfig{
			SMTPHost:     "localhost",
			SMTPPort:     587,
			SMTPUsername: "",
			SMTPPassword: "",
			FromEmail:    "estimates@builddesk.com",
			FromName:     "BuildDesk",
			UseTLS:       true,
		},
		Company: CompanyConfig{
			Name:    "BuildDesk",
			Address: "123 Construction Way, Builder City, BC 12345",
			Phone:   "(555) 123-4567",
			Email:   "info@builddesk.com",
			Website: "www.builddesk.com",
		},
		Estimate: EstimateConfig{
			NumberPrefix:        "EST-",
			DefaultMarkupRate:   10.0,
			DefaultTaxRate:      8.0,
			DefaultValidityDays: 30,
		},
		Security: SecurityConfig{
			SessionTimeout:    3600,
			PasswordMinLength: 8,
			MaxLoginAttempts:  5,
			LockoutDuration:   900,
			EncryptionKey:     "BuildDesk-Demo-Key-CHANGE-IN-PRODUCTION-256-BIT",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "logs/app.log",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *Config) {
	// Database configuration
	if host := os.Getenv("DB_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Database.Port = p
		}
	}
	if database := os.Getenv("DB_NAME"); database != "" {
		config.Database.Database = database
	}
	if username := os.Getenv("DB_USERNAME"); username != "" {
		config.Database.Username = username
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}

	// Server configuration
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		config.Server.BaseURL = baseURL
	}

	// Security configuration
	if key := os.Getenv("ENCRYPTION_KEY"); key != "" {
		config.Security.EncryptionKey = key
	}
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Security.SessionTimeout = t
		}
	}

	// Email configuration
	if host := os.Getenv("SMTP_HOST"); host != "" {
		config.Email.SMTPHost = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Email.SMTPPort = p
		}
	}
	if username := os.Getenv("SMTP_USERNAME"); username != "" {
		config.Email.SMTPUsername = username
	}
	if password := os.Getenv("SMTP_PASSWORD"); password != "" {
		config.Email.SMTPPassword = password
	}
	if fromEmail := os.Getenv("FROM_EMAIL"); fromEmail != "" {
		config.Email.FromEmail = fromEmail
	}
	if fromName := os.Getenv("FROM_NAME"); fromName != "" {
		config.Email.FromName = fromName
	}
	if useTLS := os.Getenv("USE_TLS"); useTLS != "" {
		config.Email.UseTLS = useTLS == "true"
	}

	// Company configuration
	if name := os.Getenv("COMPANY_NAME"); name != "" {
		config.Company.Name = name
	}
	if address := os.Getenv("COMPANY_ADDRESS"); address != "" {
		config.Company.Address = address
	}
	if phone := os.Getenv("COMPANY_PHONE"); phone != "" {
		config.Company.Phone = phone
	}
	if email := os.Getenv("COMPANY_EMAIL"); email != "" {
		config.Company.Email = email
	}
	if website := os.Getenv("COMPANY_WEBSITE"); website != "" {
		config.Company.Website = website
	}
	if license := os.Getenv("COMPANY_LICENSE"); license != "" {
		config.Company.License = license
	}

	// Estimate configuration
	if prefix := os.Getenv("ESTIMATE_NUMBER_PREFIX"); prefix != "" {
		config.Estimate.NumberPrefix = prefix
	}
	if markupRate := os.Getenv("DEFAULT_MARKUP_RATE"); markupRate != "" {
		if rate, err := strconv.ParseFloat(markupRate, 64); err == nil {
			config.Estimate.DefaultMarkupRate = rate
		}
	}
	if taxRate := os.Getenv("DEFAULT_TAX_RATE"); taxRate != "" {
		if rate, err := strconv.ParseFloat(taxRate, 64); err == nil {
			config.Estimate.DefaultTaxRate = rate
		}
	}
	if validityDays := os.Getenv("DEFAULT_VALIDITY_DAYS"); validityDays != "" {
		if days, err := strconv.Atoi(validityDays); err == nil {
			config.Estimate.DefaultValidityDays = days
		}
	}
	// Logging configuration
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		config.Logging.File = file
	}
}

// CompanyInfoOverrides reports whether any company field is configured
func (c *CompanyConfig) CompanyInfoOverrides() bool {
	return c.Name != "" || c.Address != "" || c.Phone != "" || c.Email != "" || c.Website != "" || c.License != ""
}
