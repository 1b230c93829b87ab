package config

import (
	"fmt"
	"log"
	"time"

	"agencyops/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func gormConfig() *gorm.Config {
	level := logger.Warn
	if AppConfig.Environment == "production" {
		level = logger.Error
	}
	return &gorm.Config{
		// Maps unique and foreign key violations onto gorm.ErrDuplicatedKey
		// and gorm.ErrForeignKeyViolated.
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

// OpenPostgres opens a postgres connection from a DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// OpenSQLite opens a sqlite database with foreign keys enforced. A single
// connection is used so in-memory databases are shared by every query.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	dsn += "?_foreign_keys=on&_busy_timeout=5000"

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func postgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	var err error
	if AppConfig.DBDriver == "sqlite" {
		DB, err = OpenSQLite(AppConfig.SQLitePath)
	} else {
		dsn := postgresDSN()
		log.Println("Using connection string:", maskPassword(dsn))
		DB, err = OpenPostgres(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	if AppConfig.DBDriver == "postgres" {
		sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
		sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := Migrate(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	if err := Seed(DB, AppConfig.Admin); err != nil {
		return fmt.Errorf("database seed failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Team{},
		&models.Role{},
		&models.RolePermission{},
		&models.User{},
		&models.Package{},
		&models.Template{},
		&models.TemplateSiteAsset{},
		&models.TemplateTeamMember{},
		&models.Client{},
		&models.ClientTeamMember{},
		&models.Assignment{},
		&models.TaskCategory{},
		&models.Task{},
		&models.ActivityLog{},
	)
}

// Seed creates the built-in roles, default task categories and, when
// configured, the initial admin account. It is idempotent.
func Seed(db *gorm.DB, admin AdminConfig) error {
	if err := models.CreateDefaultRoles(db); err != nil {
		return err
	}
	if err := models.CreateDefaultTaskCategories(db); err != nil {
		return err
	}
	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       models.UserActive,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("👤 Seeded admin account %s", admin.Email)
	return nil
}
