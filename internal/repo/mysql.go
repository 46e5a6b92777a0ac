package repo

import (
	"Go_Site/config"
	"Go_Site/model"
	"Go_Site/utils"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var Db *gorm.DB

// AutoMigrateAll migrates all database models.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Asset{},
		&model.AssetTombstone{},
		&model.User{},
		&model.AboutUs{},
		&model.Hero{},
		&model.Service{},
		&model.Testimonial{},
		&model.BlogPost{},
		&model.GalleryImage{},
		&model.ReconcileTask{},
	)
}

// InitDatabase opens the configured database driver and stores it in Db.
func InitDatabase() {
	var (
		db  *gorm.DB
		err error
	)
	switch config.AppConfig.DBDriver {
	case "sqlite":
		db, err = OpenSQLite(config.AppConfig.SQLitePath)
	default:
		db, err = OpenMysql()
	}
	if err != nil {
		utils.Log.Fatal("init database fail", zap.String("driver", config.AppConfig.DBDriver), zap.Error(err))
	}
	if err := AutoMigrateAll(db); err != nil {
		utils.Log.Fatal("migrate database fail", zap.Error(err))
	}
	utils.Log.Info("init database success", zap.String("driver", config.AppConfig.DBDriver))
	Db = db
}

// OpenMysql opens the main MySQL connection, creating the schema when missing.
func OpenMysql() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPass,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName,
	)
	gormCfg := &gorm.Config{TranslateError: true}
	db, err := gorm.Open(gormMysql.Open(dsn), gormCfg)
	if err != nil && isUnknownDatabaseError(err) {
		if createErr := ensureMySQLDatabase(config.AppConfig.DBName); createErr != nil {
			return nil, createErr
		}
		db, err = gorm.Open(gormMysql.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func isUnknownDatabaseError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1049
	}
	return strings.Contains(strings.ToLower(err.Error()), "unknown database")
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
// from any of the supported drivers.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate entry")
}

func ensureMySQLDatabase(dbName string) error {
	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return errors.New("empty database name")
	}

	serverDSN := fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPass,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
	)

	serverDB, err := sql.Open("mysql", serverDSN)
	if err != nil {
		return err
	}
	defer serverDB.Close()

	if err = serverDB.Ping(); err != nil {
		return err
	}

	_, err = serverDB.Exec(
		"CREATE DATABASE IF NOT EXISTS " + quoteMySQLIdentifier(dbName) + " CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci",
	)
	return err
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
