package models

import (
	"fmt"

	"github.com/xife12/membercore/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Member{},
		&ContractType{},
		&Membership{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default contract types and system configs if absent.
func SeedDefaultData() error {
	var contractCount int64
	DB.Model(&ContractType{}).Count(&contractCount)
	if contractCount == 0 {
		defaults := []ContractType{
			{
				Name:         "Basic",
				Description:  "Gym floor access during staffed hours",
				PriceMonthly: 29.90,
				AllowedTerms: "1,3,6,12",
			},
			{
				Name:         "Premium",
				Description:  "Full access including courses and sauna",
				PriceMonthly: 49.90,
				AllowedTerms: "6,12,24",
			},
			{
				Name:         "Flex",
				Description:  "Monthly rolling contract, no commitment",
				PriceMonthly: 59.90,
				AllowedTerms: "1",
			},
		}
		for _, ct := range defaults {
			if err := DB.Create(&ct).Error; err != nil {
				return err
			}
		}
	}

	defaultConfigs := []SystemConfig{
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable Email Notifications"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP Host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP Port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP Username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP Password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "Sender Address"},
		{Key: "email_use_tls", Value: "false", Type: "bool", Group: "email", Label: "Use SSL/TLS"},
		{Key: "reminder_enabled", Value: "true", Type: "bool", Group: "reminder", Label: "Enable Renewal Reminders"},
		{Key: "reminder_time", Value: "08:00", Type: "string", Group: "reminder", Label: "Daily Reminder Time"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
