package repository

import (
	"os"
	"testing"

	"github.com/ranger-dev/ranger-agent/internal/adapter"
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"gorm.io/gorm"
)

type tester struct {
	repo       *Repository
	dbFileName string
	db         *gorm.DB
}

func setupTestEnv(tester *tester, t *testing.T) {
	t.Helper()

	db, err := adapter.New(&envconf.DBConf{
		SQLite:     true,
		SQLitePath: tester.dbFileName,
	})

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	err = AutoMigrate(db, false)

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	tester.db = db
	tester.repo = NewRepository(db)
}

func cleanup(tester *tester, t *testing.T) {
	t.Helper()

	os.Remove(tester.dbFileName)
}
