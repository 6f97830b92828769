package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
)

func TestKeyedMutex_ExclusionPorClave(t *testing.T) {
	km := lock.NewKeyedMutex()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(context.Background(), "item-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen, "solo un dueño a la vez por clave")
	assert.Equal(t, 0, km.Len(), "las claves sin uso se liberan")
}

func TestKeyedMutex_ClavesDistintasNoSeBloquean(t *testing.T) {
	km := lock.NewKeyedMutex()
	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := km.Lock(ctx, "b")
	require.NoError(t, err, "otra clave debe obtenerse aunque 'a' esté tomada")
	unlockB()
}

func TestKeyedMutex_RespetaDeadline(t *testing.T) {
	km := lock.NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // segunda llamada sin efecto
	assert.Equal(t, 0, km.Len())

	again, err := km.Lock(context.Background(), "a")
	require.NoError(t, err, "la clave queda libre tras liberar")
	again()
}

func TestKeyedMutex_ContextoCancelado(t *testing.T) {
	km := lock.NewKeyedMutex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, km.Len())
}
