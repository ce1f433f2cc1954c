package adapter

import (
	"fmt"
	"time"

	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns a gorm database connection for the configured backend: a local
// sqlite file or a managed postgres instance. The backend is a configuration
// choice, never inferred from the ambient environment.
func New(conf *envconf.DBConf) (*gorm.DB, error) {
	if conf.SQLite {
		// the busy timeout serializes concurrent writers instead of
		// surfacing SQLITE_BUSY to the caller
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", conf.SQLitePath)

		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conf.PostgresHost,
		conf.PostgresPort,
		conf.PostgresUsername,
		conf.PostgresPassword,
		conf.PostgresDB,
		conf.PostgresSSL,
	)

	// wait for the managed database to come up
	var db *gorm.DB
	var err error

	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

		if err == nil {
			return db, nil
		}

		time.Sleep(2 * time.Second)
	}

	return nil, err
}
