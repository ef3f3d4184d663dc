package dbclient

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"easyupdate-go/configs/config"
	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/shared"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func pascalToCamelCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	words := make([]string, 0)
	currentWord := strings.Builder{}
	for i, r := range s {
		if unicode.IsUpper(r) {
			if currentWord.Len() > 0 {
				words = append(words, currentWord.String())
				currentWord.Reset()
			}
		}
		currentWord.WriteRune(r)
		if i == len(s)-1 {
			words = append(words, currentWord.String())
		}
	}

	if len(words) == 0 {
		return ""
	}

	words[0] = strings.ToLower(words[0])
	return strings.Join(words, "")
}

// GORMAdapter implements the DBClient interface using the GORM library.
type GORMAdapter struct {
	db     *gorm.DB
	config *config.DatabaseConfig
}

type CustomNamingStrategy struct {
	schema.NamingStrategy
}

// ColumnName maps Go field names to camelCase columns.
func (c CustomNamingStrategy) ColumnName(table, column string) string {
	return pascalToCamelCase(column)
}

func NewGORMAdapter(cfg *config.DatabaseConfig) *GORMAdapter {
	return &GORMAdapter{
		config: cfg,
	}
}

func (ga *GORMAdapter) dsn(withDB bool) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%d sslmode=%s TimeZone=UTC",
		ga.config.Host, ga.config.User, ga.config.Password, ga.config.Port, ga.config.SSLMode)
	if withDB {
		dsn += " dbname=" + ga.config.DBName
	}
	return dsn
}

// ensureDatabase creates the history database when the server lacks it.
func (ga *GORMAdapter) ensureDatabase(ctx context.Context) {
	server, err := gorm.Open(postgres.Open(ga.dsn(false)), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		log.Printf("Could not reach server to create database %s: %v", ga.config.DBName, err)
		return
	}
	if sqlDB, err := server.DB(); err == nil {
		defer sqlDB.Close()
	}

	var exists int64
	server.WithContext(ctx).Raw("SELECT count(*) FROM pg_database WHERE datname = ?", ga.config.DBName).Scan(&exists)
	if exists > 0 {
		return
	}
	if err := server.WithContext(ctx).Exec("CREATE DATABASE " + ga.config.DBName).Error; err != nil {
		log.Printf("Failed to create database %s: %v", ga.config.DBName, err)
	}
}

func (ga *GORMAdapter) Connect(ctx context.Context) error {
	if ga.db != nil {
		sqlDB, err := ga.db.DB()
		if err == nil {
			if err = sqlDB.PingContext(ctx); err == nil {
				return nil
			}
		}
	}
	ga.ensureDatabase(ctx)

	gormLogger := logger.New(log, logger.Config{
		SlowThreshold: time.Second, LogLevel: logger.Warn, IgnoreRecordNotFoundError: true, Colorful: false,
	})

	var err error
	ga.db, err = gorm.Open(postgres.Open(ga.dsn(true)),
		&gorm.Config{Logger: gormLogger,
			NowFunc: func() time.Time { return time.Now().UTC() },
			NamingStrategy: CustomNamingStrategy{
				schema.NamingStrategy{
					SingularTable: true,
				}}})
	if err != nil {
		return cstmerr.NewDBConnectionError("gorm.Open failed", err)
	}

	if err := ga.db.WithContext(ctx).AutoMigrate(&shared.CheckRecord{}); err != nil {
		return cstmerr.NewDBConnectionError("failed to migrate check history", err)
	}

	sqlDB, err := ga.db.DB()
	if err != nil {
		return cstmerr.NewDBConnectionError("failed to get underlying sql.DB from GORM", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return cstmerr.NewDBConnectionError("failed to ping database after GORM connect", err)
	}
	log.Printf("Connected to PostgreSQL history store %s@%s:%d", ga.config.DBName, ga.config.Host, ga.config.Port)
	return nil
}

func (ga *GORMAdapter) Close() error {
	if ga.db != nil {
		sqlDB, _ := ga.db.DB()
		if sqlDB != nil {
			return sqlDB.Close()
		}
	}
	return nil
}

func (ga *GORMAdapter) Ping(ctx context.Context) error {
	if ga.db == nil {
		return cstmerr.NewDBError("database not connected (GORM)", nil)
	}
	sqlDB, _ := ga.db.DB()
	if sqlDB == nil {
		return cstmerr.NewDBError("underlying sql.DB not available for ping (GORM)", nil)
	}
	return sqlDB.PingContext(ctx)
}

func (ga *GORMAdapter) Create(ctx context.Context, model any) error {
	if ga.db == nil {
		return cstmerr.NewDBError("database not connected (GORM)", nil)
	}
	result := ga.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return cstmerr.NewDBQueryError("GORM Create failed", result.Error)
	}
	return nil
}

func (ga *GORMAdapter) Find(ctx context.Context, collection any, opts *QueryOptions, conditions ...any) error {
	if ga.db == nil {
		return cstmerr.NewDBError("database not connected (GORM)", nil)
	}
	db := ga.db.WithContext(ctx)
	if opts != nil {
		if opts.Order != "" {
			db = db.Order(opts.Order)
		}
		if opts.Limit > 0 {
			db = db.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			db = db.Offset(opts.Offset)
		}
	}

	var result *gorm.DB
	if len(conditions) > 0 {
		result = db.Find(collection, conditions...)
	} else {
		result = db.Find(collection)
	}
	if result.Error != nil {
		// An empty result set is not an error for Find.
		return cstmerr.NewDBQueryError("GORM Find failed", result.Error)
	}
	return nil
}

func (ga *GORMAdapter) Delete(ctx context.Context, model any, conditions ...any) (int64, error) {
	if ga.db == nil {
		return 0, cstmerr.NewDBError("database not connected (GORM)", nil)
	}
	if len(conditions) == 0 {
		return 0, cstmerr.NewDBQueryError("refusing to delete without conditions", nil)
	}
	result := ga.db.WithContext(ctx).Delete(model, conditions...)
	if result.Error != nil {
		return 0, cstmerr.NewDBQueryError("GORM Delete failed", result.Error)
	}
	return result.RowsAffected, nil
}
