package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittycore/internal/blob"
	"kittycore/internal/core"
	"kittycore/pkg/domain"
)

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	src := newTestService(t, core.WithClock(core.ClockFunc(func() time.Time { return fixed })))
	a := mustCreate(t, src, alice)
	b := mustCreate(t, src, alice)
	child := mustBreed(t, src, alice, a, b)
	require.NoError(t, src.Transfer(ctx, alice, bob, child))

	blobs := blob.NewMemory()
	info, err := src.Archive(ctx, blobs, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Key, "archives/20260506T070809Z-"), info.Key)
	assert.Equal(t, "3", info.Metadata[core.ArchiveMetaKitties])
	assert.NotEmpty(t, info.Metadata[core.ArchiveMetaChecksum])

	audit := &captureAudit{}
	dst := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithAuditRecorder(audit))
	require.NoError(t, dst.Restore(ctx, "operator", blobs, info.Key))

	count, err := dst.KittiesCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	owner, ok, err := dst.OwnerOf(ctx, child)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bob, owner)
	children, err := dst.ChildrenOf(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []core.KittyID{child}, children)
	assert.Equal(t, src.Store().ExportState(), dst.Store().ExportState())

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "restore_snapshot", audit.entries[0].Operation)
	assert.Equal(t, core.AuditStatusSuccess, audit.entries[0].Status)

	// the nonce travels with the archive, so derivations do not repeat
	next, err := dst.Create(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 3, next)
}

func TestArchivePrefixIsNormalized(t *testing.T) {
	svc := newTestService(t)
	info, err := svc.Archive(context.Background(), blob.NewMemory(), "backups")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Key, "backups/"), info.Key)
}

func TestRestoreRejectsTamperedArchive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustCreate(t, svc, alice)
	blobs := blob.NewMemory()

	payload, err := json.Marshal(svc.Store().ExportState())
	require.NoError(t, err)
	_, err = blobs.Put(ctx, "archives/tampered.json", bytes.NewReader(payload), blob.PutOptions{
		Metadata: map[string]string{core.ArchiveMetaChecksum: "0"},
	})
	require.NoError(t, err)

	dst := core.NewInMemoryService(nil)
	err = dst.Restore(ctx, "operator", blobs, "archives/tampered.json")
	require.ErrorIs(t, err, core.ErrArchiveChecksum)
	count, _ := dst.KittiesCount(ctx)
	assert.Zero(t, count)

	err = dst.Restore(ctx, "operator", blobs, "archives/missing.json")
	require.ErrorIs(t, err, blob.ErrNotFound)
}

func TestRestoreRejectsInconsistentArchive(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	snap := validSnapshot()
	snap.Children = nil
	payload, err := json.Marshal(snap)
	require.NoError(t, err)
	_, err = blobs.Put(ctx, "archives/broken.json", bytes.NewReader(payload), blob.PutOptions{})
	require.NoError(t, err)

	dst := core.NewInMemoryService(core.NewDefaultRulesEngine())
	err = dst.Restore(ctx, "operator", blobs, "archives/broken.json")
	var violation domain.RuleViolationError
	require.ErrorAs(t, err, &violation)
}
