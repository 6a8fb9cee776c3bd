// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package folder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lukasdietrich/briefpost/internal/database"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/storage"
)

const localScheme = "folder"

// LocalStore keeps folders in the sqlite database and message contents in the blob
// store.
type LocalStore struct {
	conn       database.Conn
	folderDao  database.FolderDao
	messageDao database.MessageDao
	blobs      *storage.Blobs

	// wellKnown are the folder names created on first use.
	wellKnown map[string]bool
	createMu  sync.Mutex
	now       func() time.Time
}

func NewLocalStore(
	conn database.Conn,
	folderDao database.FolderDao,
	messageDao database.MessageDao,
	blobs *storage.Blobs,
	locations Locations,
) *LocalStore {
	wellKnown := make(map[string]bool)

	for _, rawURI := range locations.all() {
		if uri, err := url.Parse(rawURI); err == nil && uri.Scheme == localScheme {
			wellKnown[localName(uri)] = true
		}
	}

	return &LocalStore{
		conn:       conn,
		folderDao:  folderDao,
		messageDao: messageDao,
		blobs:      blobs,
		wellKnown:  wellKnown,
		now:        time.Now,
	}
}

func localName(uri *url.URL) string {
	return strings.Trim(uri.Host+uri.Path, "/")
}

func localURI(name string) string {
	return localScheme + "://" + name
}

func (*LocalStore) Schemes() []string {
	return []string{localScheme}
}

func (s *LocalStore) Open(ctx context.Context, uri *url.URL) (Folder, error) {
	name := localName(uri)
	if name == "" {
		return nil, &NotFoundError{URI: uri.String()}
	}

	entity, err := s.folderDao.FindByName(ctx, s.conn, name)
	if err != nil {
		if !database.IsErrNoRows(err) {
			return nil, err
		}

		if !s.wellKnown[name] {
			return nil, &NotFoundError{URI: uri.String()}
		}

		if entity, err = s.ensure(ctx, name); err != nil {
			return nil, err
		}
	}

	return &LocalFolder{store: s, entity: *entity}, nil
}

// ensure creates a well-known folder. Concurrent dispatches may race for the first
// creation, the loser reads the winner's row.
func (s *LocalStore) ensure(ctx context.Context, name string) (*models.FolderEntity, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	entity := models.FolderEntity{Name: name, Subscribed: true}

	err := s.folderDao.Insert(ctx, s.conn, &entity)
	if database.IsErrUnique(err) {
		return s.folderDao.FindByName(ctx, s.conn, name)
	}

	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx).Str("name", name).Msg("created local folder")
	return &entity, nil
}

// Create adds a new local folder.
func (s *LocalStore) Create(ctx context.Context, name string) (*models.FolderEntity, error) {
	name = strings.Trim(name, "/")
	if name == "" {
		return nil, errors.New("folder name must not be empty")
	}

	entity := models.FolderEntity{Name: name, Subscribed: true}

	if err := s.folderDao.Insert(ctx, s.conn, &entity); err != nil {
		if database.IsErrUnique(err) {
			return nil, fmt.Errorf("folder %q already exists", name)
		}

		return nil, err
	}

	log.InfoContext(ctx).Str("name", name).Msg("created local folder")
	return &entity, nil
}

// Folders returns all local folders.
func (s *LocalStore) Folders(ctx context.Context) ([]models.FolderEntity, error) {
	return s.folderDao.FindAll(ctx, s.conn)
}

func (s *LocalStore) Unsubscribe(ctx context.Context, uri *url.URL) error {
	entity, err := s.folderDao.FindByName(ctx, s.conn, localName(uri))
	if err != nil {
		if database.IsErrNoRows(err) {
			return &NotFoundError{URI: uri.String()}
		}

		return err
	}

	entity.Subscribed = false
	return s.folderDao.Update(ctx, s.conn, entity)
}

// rollbackBlob removes the blob of a message, that could not be recorded. Errors are
// logged only, the cause of the rollback is more important.
func (s *LocalStore) rollbackBlob(ctx context.Context, id string) func() {
	return func() {
		log.InfoContext(ctx).Str("blob", id).Msg("an error occurred during append, rolling back")

		if err := s.blobs.Delete(ctx, id); err != nil {
			log.WarnContext(ctx).Err(err).Str("blob", id).Msg("could not delete blob")
		}
	}
}

// LocalFolder is a folder of the LocalStore.
type LocalFolder struct {
	store  *LocalStore
	entity models.FolderEntity
}

func (f *LocalFolder) URI() string {
	return localURI(f.entity.Name)
}

// Name returns the folder name within the local store.
func (f *LocalFolder) Name() string {
	return f.entity.Name
}

func (f *LocalFolder) Append(ctx context.Context, message *models.Message, info models.MessageInfo) (string, error) {
	id, size, err := f.store.blobs.Write(ctx, bytes.NewReader(message.Bytes()))
	if err != nil {
		return "", fmt.Errorf("could not write message: %w", err)
	}

	rollback := f.store.rollbackBlob(ctx, id)

	tx, err := f.store.conn.Begin(ctx)
	if err != nil {
		rollback()
		return "", err
	}

	defer tx.RollbackWith(rollback) // nolint:errcheck

	entity := models.MessageEntity{
		ID:         id,
		FolderID:   f.entity.ID,
		Size:       size,
		Flags:      info.Flags,
		AppendedAt: f.store.now().Unix(),
	}

	if err := f.store.messageDao.Insert(ctx, tx, &entity); err != nil {
		if database.IsErrForeignKey(err) {
			return "", &NotFoundError{URI: f.URI()}
		}

		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.DebugContext(ctx).
		Str("folder", f.entity.Name).
		Str("message", id).
		Int64("size", size).
		Msg("appended message")

	return id, nil
}

func (f *LocalFolder) find(ctx context.Context, q database.Queryer, id string) (*models.MessageEntity, error) {
	entity, err := f.store.messageDao.FindByID(ctx, q, &f.entity, id)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, fmt.Errorf("%q in %q: %w", id, f.URI(), ErrMessageNotFound)
		}

		return nil, err
	}

	return entity, nil
}

func (f *LocalFolder) SetFlags(ctx context.Context, id string, flags, mask models.Flags) error {
	tx, err := f.store.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback() // nolint:errcheck

	entity, err := f.find(ctx, tx, id)
	if err != nil {
		return err
	}

	entity.Flags = entity.Flags.Apply(flags, mask)

	if err := f.store.messageDao.Update(ctx, tx, entity); err != nil {
		return err
	}

	return tx.Commit()
}

// Synchronize is a no-op for the local store unless expunge is set, because every
// change is committed immediately. Expunging removes the blobs of deleted messages and
// marks their rows.
func (f *LocalFolder) Synchronize(ctx context.Context, expunge bool) error {
	if !expunge {
		return nil
	}

	tx, err := f.store.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback() // nolint:errcheck

	messages, err := f.store.messageDao.FindExpungeable(ctx, tx, &f.entity)
	if err != nil {
		return err
	}

	for _, message := range messages {
		if err := f.expungeMessage(ctx, tx, &message); err != nil {
			return err
		}
	}

	if len(messages) > 0 {
		log.DebugContext(ctx).
			Str("folder", f.entity.Name).
			Int("count", len(messages)).
			Msg("expunged messages")
	}

	return tx.Commit()
}

func (f *LocalFolder) expungeMessage(ctx context.Context, tx database.Tx, message *models.MessageEntity) error {
	if err := f.store.blobs.Delete(ctx, message.ID); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	message.DeletedAt.Int64 = f.store.now().Unix()
	message.DeletedAt.Valid = true

	return f.store.messageDao.Update(ctx, tx, message)
}

func (f *LocalFolder) List(ctx context.Context) ([]string, error) {
	messages, err := f.store.messageDao.FindByFolder(ctx, f.store.conn, &f.entity)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(messages))
	for _, message := range messages {
		if !message.Flags.Has(models.FlagDeleted) {
			ids = append(ids, message.ID)
		}
	}

	return ids, nil
}

func (f *LocalFolder) Message(ctx context.Context, id string) (*models.Message, error) {
	if _, err := f.find(ctx, f.store.conn, id); err != nil {
		return nil, err
	}

	r, err := f.store.blobs.Reader(id)
	if err != nil {
		return nil, err
	}

	defer r.Close()
	return models.ReadMessage(r)
}

// Info returns the stored metadata of a message.
func (f *LocalFolder) Info(ctx context.Context, id string) (models.MessageInfo, error) {
	entity, err := f.find(ctx, f.store.conn, id)
	if err != nil {
		return models.MessageInfo{}, err
	}

	return models.MessageInfo{Flags: entity.Flags}, nil
}
