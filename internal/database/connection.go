// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentloop/rentloop-backend/internal/config"
	"github.com/rentloop/rentloop-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if db.Dialector.Name() == "postgres" {
		// Enable UUID extension
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
			return fmt.Errorf("failed to create UUID extension: %w", err)
		}
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.TenantProfile{},
		&models.Lease{},
		&models.RentPayment{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",
		"CREATE INDEX IF NOT EXISTS idx_users_company_role ON users(company_id, role)",

		// Property and unit indexes
		"CREATE INDEX IF NOT EXISTS idx_properties_company ON properties(company_id)",
		"CREATE INDEX IF NOT EXISTS idx_units_property ON units(property_id)",
		"CREATE INDEX IF NOT EXISTS idx_units_company_status ON units(company_id, status)",

		// Tenant indexes
		"CREATE INDEX IF NOT EXISTS idx_tenant_profiles_company_status ON tenant_profiles(company_id, status)",

		// Lease indexes
		"CREATE INDEX IF NOT EXISTS idx_leases_company_status ON leases(company_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_leases_tenant ON leases(tenant_id)",
		"CREATE INDEX IF NOT EXISTS idx_leases_unit ON leases(unit_id)",
		"CREATE INDEX IF NOT EXISTS idx_leases_end_date ON leases(end_date) WHERE status = 'active'",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_rent_payments_lease ON rent_payments(lease_id)",
		"CREATE INDEX IF NOT EXISTS idx_rent_payments_company_status ON rent_payments(company_id, status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	if db.Dialector.Name() == "postgres" {
		// One active lease per unit, enforced at the database in case two
		// activations race past the row lock.
		indexes = append(indexes,
			"CREATE UNIQUE INDEX IF NOT EXISTS uniq_leases_active_unit ON leases(unit_id) WHERE status = 'active' AND deleted_at IS NULL",
		)
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default super admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleSuperAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username:  "admin",
			Email:     "admin@rentloop.io",
			FirstName: "System",
			LastName:  "Administrator",
			Role:      models.UserRoleSuperAdmin,
			Status:    models.UserStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default super admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
