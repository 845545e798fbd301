// Package storage aggregates the backing stores: relational database, blob
// store, message queue and key/value store.
//
// Example:
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // handle error
//	}
//
//	db := mgr.GetDBClient()
//	blobs := mgr.GetBlobClient()
package storage

import (
	"context"
	"sync"

	"github.com/dkozyrev/softvault/pkg/configs"
	blobc "github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	dbc "github.com/dkozyrev/softvault/pkg/internal/storage/db"
	kvc "github.com/dkozyrev/softvault/pkg/internal/storage/kv"
	mqc "github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	nlog "github.com/dkozyrev/softvault/pkg/log"
)

// Manager aggregates all storage resources.
type Manager struct {
	DB   *dbc.Client
	Blob *blobc.Client
	MQ   *mqc.Client
	KV   *kvc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init initializes the default storage from the global configuration.
// Repeated calls return the already initialized instance.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		if dbi, e := dbc.New(ctx, &cfg.DB); e != nil {
			err = e
			return
		} else {
			m.DB = dbi
		}

		if bi, e := blobc.New(ctx, &cfg.Blob); e != nil {
			err = e
			return
		} else {
			m.Blob = bi
		}

		if mi, e := mqc.New(ctx, &cfg.MQ); e != nil {
			err = e
			return
		} else {
			m.MQ = mi
		}

		if ki, e := kvc.NewKVClient(ctx, &cfg.KV); e != nil {
			err = e
			return
		} else {
			m.KV = ki
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient returns the database client.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetBlobClient returns the blob store client.
func (m *Manager) GetBlobClient() *blobc.Client {
	return m.Blob
}

// GetMQClient returns the message queue client.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetKVClient returns the key/value client.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// Close releases all storage resources.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.Blob != nil {
		if e := m.Blob.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if sqlDB, e := m.DB.DB.DB(); e == nil {
			if e := sqlDB.Close(); e != nil {
				err = e
			}
		}
	}

	return err
}
