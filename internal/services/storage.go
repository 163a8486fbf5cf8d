package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "jira-sprint-worklogs/internal/common"
	. "jira-sprint-worklogs/internal/interfaces"

	bolt "go.etcd.io/bbolt"
)

const (
	sprintsBucket  = "sprints"
	metadataBucket = "metadata"
	savedAtPrefix  = "saved_at:"
)

type storage struct {
	db     *bolt.DB
	config *CacheConfig
}

// NewStorage opens the sprint cache database, creating it and its buckets when missing.
func NewStorage(config *CacheConfig) (SprintStore, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, WrapError(err, ErrorTypeStorage, "CACHE_DIR", "failed to create database directory")
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, WrapError(err, ErrorTypeStorage, "CACHE_OPEN", "failed to open database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sprintsBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, WrapError(err, ErrorTypeStorage, "CACHE_BUCKETS", "failed to create buckets")
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *storage) LoadSprint(sprintID string) (*SprintData, error) {
	var sprint *SprintData

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(sprintsBucket)).Get([]byte(sprintID))
		if data == nil {
			return nil
		}

		var stored SprintData
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal sprint %s: %w", sprintID, err)
		}
		sprint = &stored
		return nil
	})
	if err != nil {
		return nil, WrapError(err, ErrorTypeStorage, "CACHE_READ", "failed to load sprint")
	}

	return sprint, nil
}

func (s *storage) SaveSprint(sprint *SprintData) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(sprint)
		if err != nil {
			return fmt.Errorf("failed to marshal sprint %s: %w", sprint.ID, err)
		}

		if err := tx.Bucket([]byte(sprintsBucket)).Put([]byte(sprint.ID), data); err != nil {
			return fmt.Errorf("failed to save sprint %s: %w", sprint.ID, err)
		}

		savedAt, err := time.Now().MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode save time of sprint %s: %w", sprint.ID, err)
		}
		return tx.Bucket([]byte(metadataBucket)).Put([]byte(savedAtPrefix+sprint.ID), savedAt)
	})
	if err != nil {
		return WrapError(err, ErrorTypeStorage, "CACHE_WRITE", "failed to save sprint")
	}
	return nil
}

func (s *storage) ClearSprints() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{sprintsBucket, metadataBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return WrapError(err, ErrorTypeStorage, "CACHE_CLEAR", "failed to clear sprint cache")
	}
	return nil
}

func (s *storage) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(sprintsBucket)).Stats().KeyN
		return nil
	})
	return count, err
}

// LastSaved returns the most recent save time, zero when the cache is empty.
func (s *storage) LastSaved() (time.Time, error) {
	var latest time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(metadataBucket)).Cursor()
		prefix := []byte(savedAtPrefix)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var savedAt time.Time
			if err := savedAt.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("failed to decode save time of %s: %w", k, err)
			}
			if savedAt.After(latest) {
				latest = savedAt
			}
		}
		return nil
	})
	if err != nil {
		return time.Time{}, WrapError(err, ErrorTypeStorage, "CACHE_READ", "failed to read cache metadata")
	}
	return latest, nil
}
