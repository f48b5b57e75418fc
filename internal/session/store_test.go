package session

import (
	"testing"
	"time"

	"infiniteats/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateGetDelete(t *testing.T) {
	st := newStore(time.Minute, 10, errors.Discard())

	sess := st.Create()
	_, err := uuid.Parse(sess.ID())
	require.NoError(t, err)

	got, ok := st.Get(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, st.Len())

	st.Delete(sess.ID())
	_, ok = st.Get(sess.ID())
	assert.False(t, ok)
	assert.Zero(t, st.Len())
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	st := newStore(time.Minute, 10, errors.Discard())
	st.Create()
	st.Create()

	assert.Zero(t, st.cleanup())
	assert.Equal(t, 2, st.Len())

	st.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, st.cleanup())
	assert.Zero(t, st.Len())
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	st := newStore(time.Hour, 2, errors.Discard())
	first := st.Create()
	second := st.Create()

	st.now = func() time.Time { return time.Now().Add(time.Minute) }
	_, ok := st.Get(first.ID())
	require.True(t, ok)

	third := st.Create()
	assert.Equal(t, 2, st.Len())

	_, ok = st.Get(second.ID())
	assert.False(t, ok)
	_, ok = st.Get(first.ID())
	assert.True(t, ok)
	_, ok = st.Get(third.ID())
	assert.True(t, ok)
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	st := NewStore(time.Minute, 5, errors.Discard())
	st.Close()
	st.Close()
}
