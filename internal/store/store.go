package store

import (
	"gorm.io/gorm"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/store/model"
)

type Store interface {
	Run() Run
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db  *gorm.DB
	run Run
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:  db,
		run: NewRunStore(db),
	}
}

func (s *DataStore) Run() Run {
	return s.run
}

func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.UploadRun{})
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
