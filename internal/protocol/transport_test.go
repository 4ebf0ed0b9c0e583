package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_Roundtrip(t *testing.T) {
	t.Parallel()

	a, b := Pipe(1)
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, Message{Type: MsgPing}))
	got := <-b.Recv()
	assert.Equal(t, MsgPing, got.Type)

	require.NoError(t, b.Send(ctx, Message{Type: MsgPong}))
	got = <-a.Recv()
	assert.Equal(t, MsgPong, got.Type)
}

func TestPipe_SendAfterClose(t *testing.T) {
	t.Parallel()

	a, b := Pipe(1)
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.Send(context.Background(), Message{Type: MsgPing}), ErrConnClosed)
	assert.ErrorIs(t, b.Send(context.Background(), Message{Type: MsgPong}), ErrConnClosed,
		"closing one end closes the pipe")
}

func TestPipe_SendHonorsContext(t *testing.T) {
	t.Parallel()

	a, _ := Pipe(0) // unbuffered, nobody reading
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := a.Send(ctx, Message{Type: MsgPing})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPipe_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	a, b := Pipe(1)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}
