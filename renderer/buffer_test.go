package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputBufferGrowth(t *testing.T) {
	buf := newOutputBuffer(4, 0)

	require.NoError(t, buf.append([]byte("abcd")))
	assert.Equal(t, 4, cap(buf.data), "exact fit does not grow")

	require.NoError(t, buf.append([]byte("e")))
	assert.Equal(t, 8, cap(buf.data))

	require.NoError(t, buf.append(make([]byte, 20)))
	assert.Equal(t, 32, cap(buf.data))
	assert.Len(t, buf.data, 25)
}

func TestOutputBufferEmptyAppend(t *testing.T) {
	buf := newOutputBuffer(2, 0)
	require.NoError(t, buf.append(nil))
	require.NoError(t, buf.append([]byte{}))
	assert.Empty(t, buf.data)
	assert.Equal(t, 2, cap(buf.data))
}

func TestOutputBufferZeroInitial(t *testing.T) {
	buf := newOutputBuffer(0, 0)
	require.NoError(t, buf.append([]byte("abc")))
	assert.Equal(t, "abc", string(buf.bytes()))
}

func TestOutputBufferLimit(t *testing.T) {
	buf := newOutputBuffer(256, 10)
	assert.Equal(t, 10, cap(buf.data))

	require.NoError(t, buf.append([]byte("0123456789")))
	require.ErrorIs(t, buf.append([]byte("x")), ErrOutputTooLarge)
	assert.Equal(t, "0123456789", string(buf.data))
}

func TestOutputBufferGrowthCappedAtLimit(t *testing.T) {
	buf := newOutputBuffer(4, 6)
	require.NoError(t, buf.append([]byte("abcde")))
	assert.Equal(t, 6, cap(buf.data))
}

func TestOutputBufferHandsOverWithoutCopy(t *testing.T) {
	buf := newOutputBuffer(16, 0)
	require.NoError(t, buf.append([]byte("hello")))
	backing := &buf.data[:1][0]

	out := buf.bytes()
	assert.Equal(t, "hello", string(out))
	assert.Same(t, backing, &out[0])
	assert.Nil(t, buf.data)
}
