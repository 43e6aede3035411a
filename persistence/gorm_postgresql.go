// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/gridarena/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(opts Options) (*GormPostgreSQL, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	return newGormStore(postgres.Open(opts.dsn()), &gorm.Config{
		Logger: gormLogger,
	})
}

// newGormStore opens dialector, sizes the pool and migrates the schema. The
// pool is closed again if any step after opening fails.
func newGormStore(dialector gorm.Dialector, cfg *gorm.Config) (*GormPostgreSQL, error) {
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatchEvent{}); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveEvent(ctx context.Context, event models.MatchEvent) error {
	row := models.NewGormMatchEvent(event)
	return p.db.WithContext(ctx).Create(&row).Error
}

func (p *GormPostgreSQL) RecentEvents(ctx context.Context, limit int) ([]models.MatchEvent, error) {
	var rows []models.GormMatchEvent
	q := p.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]models.MatchEvent, len(rows))
	for i, row := range rows {
		events[i] = row.Event()
	}
	return events, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
