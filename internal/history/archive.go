package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alikhantareen/natural-language-query-finder/internal/storage"
)

const contentTypeParquet = "application/vnd.apache.parquet"

// Archive stores entries as parquet objects under history/<id>.parquet.
type Archive struct {
	store storage.ObjectStore
}

func NewArchive(store storage.ObjectStore) (*Archive, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &Archive{store: store}, nil
}

func (a *Archive) Record(ctx context.Context, entry Entry) error {
	key, err := storage.HistoryObjectKey(entry.ID)
	if err != nil {
		return err
	}
	data, err := Encode(entry)
	if err != nil {
		return err
	}
	if _, err := a.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: contentTypeParquet}); err != nil {
		return fmt.Errorf("archive history entry %s: %w", entry.ID, err)
	}
	return nil
}

func (a *Archive) Lookup(ctx context.Context, id string) (Entry, error) {
	key, err := storage.HistoryObjectKey(id)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	reader, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("load history entry %s: %w", id, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return Entry{}, fmt.Errorf("read history entry %s: %w", id, err)
	}
	return Decode(data)
}
