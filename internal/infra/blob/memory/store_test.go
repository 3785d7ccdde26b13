package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittycore/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.Equal(t, core.DriverMemory, s.Driver())

	md := map[string]string{"checksum": "abc"}
	info, err := s.Put(ctx, "archives/a.json", strings.NewReader("{}"), core.PutOptions{ContentType: "application/json", Metadata: md})
	require.NoError(t, err)
	assert.EqualValues(t, 2, info.Size)
	md["checksum"] = "mutated"

	_, err = s.Put(ctx, "archives/a.json", strings.NewReader("x"), core.PutOptions{})
	require.ErrorIs(t, err, core.ErrExists)

	got, rc, err := s.Get(ctx, "archives/a.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, "abc", got.Metadata["checksum"])

	_, err = s.Put(ctx, "other/b.json", strings.NewReader("b"), core.PutOptions{})
	require.NoError(t, err)
	list, err := s.List(ctx, "archives/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "archives/a.json", list[0].Key)

	removed, err := s.Delete(ctx, "archives/a.json")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Delete(ctx, "archives/a.json")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Head(ctx, "archives/a.json")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, _, err = s.Get(ctx, "archives/a.json")
	require.ErrorIs(t, err, core.ErrNotFound)
}
