package ctrl

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/763021701/ttt-plus-plus/adaptation/config"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/db"
	"github.com/763021701/ttt-plus-plus/common/log"
)

type Ctrl struct {
	db          *db.DB
	config      *config.Config
	runLogger   *log.RunLogger
	resultCache *cache.Cache
	logger      log.Logger
}

func New(database *db.DB, cfg *config.Config, runLogger *log.RunLogger, logger log.Logger) *Ctrl {
	return &Ctrl{
		db:          database,
		config:      cfg,
		runLogger:   runLogger,
		resultCache: cache.New(5*time.Minute, 10*time.Minute),
		logger:      logger,
	}
}
