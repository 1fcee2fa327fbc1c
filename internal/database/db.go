package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ledger-reports/internal/config"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

// Open connects to Postgres and, when enabled, migrates the schema and seeds
// the dictionary. The returned handle is injected into the repository; there
// is no package level session.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("Schema migration finished")
	}

	if err := SeedDictionary(ctx, db, dictionaryNames(cfg)); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Dictionary{},
		&models.User{},
		&models.Credit{},
		&models.Payment{},
		&models.Plan{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// SeedDictionary inserts dictionary rows that are missing by name.
func SeedDictionary(ctx context.Context, db *gorm.DB, names []string) error {
	for _, name := range names {
		entry := models.Dictionary{Name: name}
		if err := db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&entry).Error; err != nil {
			return fmt.Errorf("seed dictionary %q: %w", name, err)
		}
	}
	return nil
}

// LoadCatalog resolves the configured dictionary names into ids.
func LoadCatalog(ctx context.Context, db *gorm.DB, cfg *config.Config) (*ledger.Catalog, error) {
	var rows []models.Dictionary
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	byName := make(map[string]uint, len(rows))
	for _, r := range rows {
		byName[r.Name] = r.ID
	}

	categories := make(map[ledger.Category]ledger.Entry, len(cfg.CategoryNames))
	for cat, name := range cfg.CategoryNames {
		if id, ok := byName[name]; ok {
			categories[cat] = ledger.Entry{ID: id, Name: name}
		}
	}
	paymentTypes := make(map[ledger.PaymentType]ledger.Entry, len(cfg.PaymentTypeNames))
	for pt, name := range cfg.PaymentTypeNames {
		if id, ok := byName[name]; ok {
			paymentTypes[pt] = ledger.Entry{ID: id, Name: name}
		}
	}

	return ledger.NewCatalog(categories, paymentTypes)
}

func dictionaryNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.CategoryNames)+len(cfg.PaymentTypeNames))
	for _, pt := range ledger.PaymentTypes {
		names = append(names, cfg.PaymentTypeNames[pt])
	}
	for _, cat := range ledger.Categories {
		names = append(names, cfg.CategoryNames[cat])
	}
	return names
}
