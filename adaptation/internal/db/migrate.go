package db

import (
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ProgressState int

const (
	ProgressStateQueued ProgressState = iota
	ProgressStateRunning
	ProgressStateFinished
	ProgressStateFailed
)

func (s ProgressState) String() string {
	return [...]string{"Queued", "Running", "Finished", "Failed"}[s]
}

func (d *DB) Migrate() error {
	d.db.Set("gorm:table_options", "ENGINE=InnoDB")

	m := gormigrate.New(d.db, &gormigrate.Options{UseTransaction: false}, []*gormigrate.Migration{
		{
			ID: "create-run",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&schema.Run{})
			},
		},
	})

	return errors.Wrap(m.Migrate(), "migrate database")
}
