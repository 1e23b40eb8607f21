package deepagent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotifai/deepagent/model"
)

func TestInvokeSyncReturnsVisibleReply(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.EnqueueText(`{"steps":["Buscar la canción"]}`)            // planner
	mock.EnqueueText(`{"goal":"buscar","notes":"una canción"}`)    // researcher
	mock.EnqueueText("He encontrado la canción.")                  // executor
	mock.EnqueueText("Aquí tienes la canción que buscabas.")       // finalizer

	a, err := New(mock)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := InvokeSync(ctx, a, "busca una canción")
	require.NoError(t, err)
	assert.Equal(t, "Aquí tienes la canción que buscabas.", reply)
	assert.Equal(t, 4, mock.CallCount)
}

func TestInvokeSyncPropagatesErrors(t *testing.T) {
	mock := model.NewMockModel("test")
	a, err := New(mock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = InvokeSync(ctx, a, "hola")
	assert.Error(t, err)
}
