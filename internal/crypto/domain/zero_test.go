package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	payload := append([]byte(`{"val":"`), key...)

	Zero(payload[8:])
	assert.Equal(t, []byte(`{"val":"`), payload[:8], "bytes outside the slice are untouched")
	assert.Equal(t, make([]byte, len(key)), payload[8:])

	assert.NotPanics(t, func() { Zero(nil) })
}
