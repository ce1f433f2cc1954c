package envconf

import "time"

type DBConf struct {
	SQLite     bool   `env:"SQL_LITE,default=true"`
	SQLitePath string `env:"SQL_LITE_PATH,default=./ranger.db"`

	PostgresHost     string `env:"PG_HOST,default=postgres"`
	PostgresPort     uint   `env:"PG_PORT,default=5432"`
	PostgresUsername string `env:"PG_USER,default=postgres"`
	PostgresPassword string `env:"PG_PASS,default=postgres"`
	PostgresDB       string `env:"PG_DB,default=ranger"`
	PostgresSSL      string `env:"PG_SSL,default=disable"`
}

type LockConf struct {
	// LockStoreKind selects the lease backend: "db" uses the relational
	// store, "redis" uses SET NX with a TTL.
	LockStoreKind string        `env:"LOCK_STORE_KIND,default=db"`
	LockTTL       time.Duration `env:"LOCK_TTL,default=30s"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername string `env:"REDIS_USER"`
	RedisPassword string `env:"REDIS_PASS"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
}

type NotifierConf struct {
	// WebhookHost disables notifications when empty.
	WebhookHost  string `env:"NOTIFY_WEBHOOK_HOST"`
	WebhookToken string `env:"NOTIFY_WEBHOOK_TOKEN"`
}

type EnvDecoderConf struct {
	Debug      bool `env:"DEBUG,default=true"`
	ServerPort uint `env:"SERVER_PORT,default=10001"`

	RunbookDir    string `env:"RUNBOOK_DIR,default=./runbooks"`
	WatchRunbooks bool   `env:"WATCH_RUNBOOKS,default=false"`

	DBConf       DBConf
	LockConf     LockConf
	NotifierConf NotifierConf
}
