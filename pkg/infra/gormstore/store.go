package gormstore

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eightball/variance/common/entity"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Store 基于 gorm 的数据访问对象，实现检测引擎的全部数据端口
type Store struct {
	db *gorm.DB
}

// Open 按驱动打开数据库连接
// MySQL DSN 需要带 parseTime=True
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New 创建 Store 实例
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewStore 打开连接并创建 Store
func NewStore(driver, dsn string, autoMigrate bool) (*Store, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	s := New(db)
	if autoMigrate {
		if err := s.AutoMigrate(); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// AutoMigrate 创建或更新表结构
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(entity.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
