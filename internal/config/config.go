package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// OutOfZonePolicy decides what happens to a clock-in reported outside every
// allowed zone: reject the transition, or accept it and flag the record.
type OutOfZonePolicy string

const (
	OutOfZoneReject OutOfZonePolicy = "reject"
	OutOfZoneFlag   OutOfZonePolicy = "flag"
)

// AttendanceConfig holds the tunable policy knobs of the attendance core.
type AttendanceConfig struct {
	OutOfZonePolicy   OutOfZonePolicy
	AccuracyCeilingM  float64       // readings above this accuracy are flagged low_accuracy
	MaxTravelSpeedKmh float64       // implied speeds above this are flagged spoofing_suspected
	LocationTimeout   time.Duration // bound on device position acquisition
	HalfDayBelowHours float64       // default half-day threshold when a policy has none
}

func Load() (*Config, error) {
	// Missing .env is fine in production; env vars take over.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workpulse-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Attendance policy configuration
	accuracyCeiling, err := strconv.ParseFloat(getEnv("ATTENDANCE_ACCURACY_CEILING_M", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_ACCURACY_CEILING_M: %w", err)
	}

	maxSpeed, err := strconv.ParseFloat(getEnv("ATTENDANCE_MAX_TRAVEL_SPEED_KMH", "900"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MAX_TRAVEL_SPEED_KMH: %w", err)
	}

	locationTimeout, err := time.ParseDuration(getEnv("ATTENDANCE_LOCATION_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LOCATION_TIMEOUT: %w", err)
	}

	halfDayHours, err := strconv.ParseFloat(getEnv("ATTENDANCE_HALF_DAY_HOURS", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_HALF_DAY_HOURS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		OutOfZonePolicy:   OutOfZonePolicy(getEnv("ATTENDANCE_OUT_OF_ZONE_POLICY", "reject")),
		AccuracyCeilingM:  accuracyCeiling,
		MaxTravelSpeedKmh: maxSpeed,
		LocationTimeout:   locationTimeout,
		HalfDayBelowHours: halfDayHours,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.OutOfZonePolicy != OutOfZoneReject && c.Attendance.OutOfZonePolicy != OutOfZoneFlag {
		return fmt.Errorf("ATTENDANCE_OUT_OF_ZONE_POLICY must be 'reject' or 'flag'")
	}
	if c.Attendance.AccuracyCeilingM <= 0 {
		return fmt.Errorf("ATTENDANCE_ACCURACY_CEILING_M must be positive")
	}
	if c.Attendance.MaxTravelSpeedKmh <= 0 {
		return fmt.Errorf("ATTENDANCE_MAX_TRAVEL_SPEED_KMH must be positive")
	}
	if c.Attendance.LocationTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_LOCATION_TIMEOUT must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
