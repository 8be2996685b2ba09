package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/haoyun/account-service/config"
	"github.com/haoyun/account-service/pkg/audit"
	"github.com/haoyun/account-service/pkg/mailer"
)

// Container holds the process-wide dependencies, constructed once in main
// and passed down explicitly. Optional members (Redis, ES, AuditPub) may be
// nil; consumers degrade gracefully.
type Container struct {
	Cfg      *config.Config
	Logger   *logrus.Logger
	PGPool   *pgxpool.Pool
	Redis    *redis.Client
	ES       *elasticsearch.Client
	Mail     mailer.Sender
	AuditPub *audit.Publisher
}
