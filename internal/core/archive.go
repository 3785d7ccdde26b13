package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"kittycore/internal/blob"
)

// Archive metadata keys. Lower case so S3 round-trips them unchanged.
const (
	ArchiveMetaChecksum = "checksum"
	ArchiveMetaKitties  = "kitties-count"

	DefaultArchivePrefix = "archives/"
)

// ErrArchiveChecksum is returned when an archive body does not match the
// checksum stored alongside it.
var ErrArchiveChecksum = errors.New("archive checksum mismatch")

// ArchiveSnapshot writes the store's current state to blobs under prefix and
// returns the stored object's metadata.
func ArchiveSnapshot(ctx context.Context, store PersistentStore, blobs blob.Store, prefix string, now time.Time) (blob.Info, error) {
	snapshot := store.ExportState()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if prefix == "" {
		prefix = DefaultArchivePrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	key := fmt.Sprintf("%s%s-%s.json", prefix, now.UTC().Format("20060102T150405Z"), uuid.NewString())
	return blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			ArchiveMetaChecksum: checksum(payload),
			ArchiveMetaKitties:  strconv.FormatUint(uint64(snapshot.Count), 10),
		},
	})
}

// LoadArchive reads and verifies the archive stored at key.
func LoadArchive(ctx context.Context, blobs blob.Store, key string) (Snapshot, error) {
	info, rc, err := blobs.Get(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read archive %s: %w", key, err)
	}
	if want, ok := info.Metadata[ArchiveMetaChecksum]; ok && want != checksum(payload) {
		return Snapshot{}, fmt.Errorf("archive %s: %w", key, ErrArchiveChecksum)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return snapshot, nil
}

// RestoreSnapshot replaces the store's state with the archive at key.
func RestoreSnapshot(ctx context.Context, store PersistentStore, blobs blob.Store, key string) error {
	snapshot, err := LoadArchive(ctx, blobs, key)
	if err != nil {
		return err
	}
	return store.ImportState(ctx, snapshot)
}

// Archive stores the service's current state in blobs.
func (s *Service) Archive(ctx context.Context, blobs blob.Store, prefix string) (blob.Info, error) {
	return ArchiveSnapshot(ctx, s.store, blobs, prefix, s.clock.Now())
}

// Restore replaces the service's state with a stored archive. Restores are
// audited with the given actor.
func (s *Service) Restore(ctx context.Context, actor AccountID, blobs blob.Store, key string) error {
	return s.run(ctx, opRestore, actor, nil, func(ctx context.Context) error {
		return RestoreSnapshot(ctx, s.store, blobs, key)
	})
}

func checksum(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}
