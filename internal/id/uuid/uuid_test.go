package uuid

import (
	"testing"
	"time"

	goUUID "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorNewRunID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewRunID()
	require.NoError(t, err)
	id2, err := gen.NewRunID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	parsed, err := goUUID.Parse(id1)
	require.NoError(t, err)
	assert.Equal(t, goUUID.Version(7), parsed.Version())
}

func TestStartedAt(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	id, err := New().NewRunID()
	require.NoError(t, err)

	started, err := StartedAt(id)
	require.NoError(t, err)
	assert.WithinRange(t, started, before, time.Now().Add(time.Second))

	_, err = StartedAt("not-a-uuid")
	assert.Error(t, err)

	_, err = StartedAt(goUUID.NewString())
	assert.Error(t, err, "v4 ids carry no timestamp")
}
