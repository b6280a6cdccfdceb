package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_HoldsUntilRelease(t *testing.T) {
	w := NewDeferredWriter(0)
	_, err := w.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, w.Buffered())

	var dst bytes.Buffer
	require.NoError(t, w.Release(&dst))
	assert.Equal(t, "one\ntwo\n", dst.String())
	assert.Equal(t, 0, w.Buffered())

	_, err = w.Write([]byte("three\n"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", dst.String(), "writes pass through after release")

	require.NoError(t, w.Release(&bytes.Buffer{}), "second release is a no-op")
	assert.NoError(t, w.Sync())
}

func TestDeferredWriter_DropsPastLimit(t *testing.T) {
	w := NewDeferredWriter(10)
	n, err := w.Write([]byte("12345678"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	n, err = w.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n, "dropped writes still report success")

	var dst bytes.Buffer
	require.NoError(t, w.Release(&dst))
	assert.True(t, strings.HasPrefix(dst.String(), "12345678"))
	assert.Contains(t, dst.String(), "dropped 1 log entries")
}

func TestDeferredWriter_ConcurrentWrites(t *testing.T) {
	w := NewDeferredWriter(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = w.Write([]byte("x\n"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600, w.Buffered())
}
