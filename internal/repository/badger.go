package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"message-store/internal/domain"
)

const badgerKeyPrefix = "msg:"

// BadgerStore persists messages in an embedded BadgerDB, one key per message.
// Keys are "msg:{id}" so List returns messages in id order.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenBadger opens (or creates) a BadgerDB directory and wraps it in a store.
// The returned store owns the database and closes it on Close.
func OpenBadger(path string, log *slog.Logger) (*BadgerStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repository: badger path must not be empty")
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("repository: open badger at %q: %w", path, err)
	}
	return NewBadgerStore(db, log)
}

// NewBadgerStore wraps an already opened database. Close closes db.
func NewBadgerStore(db *badger.DB, log *slog.Logger) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("repository: badger db must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &BadgerStore{db: db, log: log}, nil
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

func (s *BadgerStore) List(_ context.Context) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			msg, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: List: %w", err)
	}
	return msgs, nil
}

func (s *BadgerStore) Get(_ context.Context, id string) (domain.Message, bool, error) {
	var msg domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		msg, err = decodeItem(item)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Get %q: %w", id, err)
	}
	return msg, true, nil
}

func (s *BadgerStore) Insert(_ context.Context, msg domain.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("repository: Insert encode: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(msg.ID))
		switch {
		case err == nil:
			return domain.ErrMessageExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(badgerKey(msg.ID), value)
	})
	if err != nil {
		return fmt.Errorf("repository: Insert %q: %w", msg.ID, err)
	}
	return nil
}

func (s *BadgerStore) Replace(_ context.Context, msg domain.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("repository: Replace encode: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(msg.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrMessageNotFound
			}
			return err
		}
		return txn.Set(badgerKey(msg.ID), value)
	})
	if err != nil {
		return fmt.Errorf("repository: Replace %q: %w", msg.ID, err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, id string) (domain.Message, bool, error) {
	var msg domain.Message
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		if msg, err = decodeItem(item); err != nil {
			return err
		}
		return txn.Delete(badgerKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Delete %q: %w", id, err)
	}
	return msg, true, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	s.log.Info("Closing BadgerDB...")
	return s.db.Close()
}

func decodeItem(item *badger.Item) (domain.Message, error) {
	var msg domain.Message
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &msg)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode %q: %w", item.Key(), err)
	}
	return msg, nil
}
