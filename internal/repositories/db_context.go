package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"strings"
)

type DbContext struct {
	DB *gorm.DB
}

// NewDbContext opens postgres for postgres:// DSNs and sqlite for anything else,
// which is treated as a file path.
func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(dialector(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func dialector(connectionString string) gorm.Dialector {
	if strings.HasPrefix(connectionString, "postgres://") || strings.HasPrefix(connectionString, "postgresql://") {
		return postgres.Open(connectionString)
	}
	return sqlite.Open(connectionString)
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(models.JobRecord{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobRecord entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.FeedState{})
	if err != nil {
		return fmt.Errorf("failed to migrate FeedState entity: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
