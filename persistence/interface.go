// persistence/interface.go
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/gridarena/models"
)

// QueryTimeout bounds every database call.
const QueryTimeout = 5 * time.Second

// Database 比赛事件存储接口
type Database interface {
	SaveEvent(ctx context.Context, event models.MatchEvent) error
	RecentEvents(ctx context.Context, limit int) ([]models.MatchEvent, error)
	Close() error
}

// 错误定义
var (
	ErrUnknownDriver = fmt.Errorf("unknown database driver")
)

// Options 数据库连接参数
type Options struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

func (o Options) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		o.Host, o.Port, o.User, o.Password, o.DBName)
}

// Open selects a store by driver name: "", "none" and "memory" keep events in
// memory, "gorm" uses GORM over pgx, "postgres" uses lib/pq with raw SQL.
func Open(opts Options) (Database, error) {
	switch opts.Driver {
	case "", "none", "memory":
		return NewMemoryStore(), nil
	case "gorm":
		return NewGormPostgreSQL(opts)
	case "postgres":
		return NewPostgreSQL(opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
