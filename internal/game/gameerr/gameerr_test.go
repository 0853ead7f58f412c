package gameerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatsMessage(t *testing.T) {
	err := New(IllegalMove, "cell %d is occupied", 4)
	assert.Equal(t, IllegalMove, err.Code)
	assert.Equal(t, "cell 4 is occupied", err.Message)
	assert.Equal(t, "IllegalMove: cell 4 is occupied", err.Error())
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("applying move: %w", New(NotYourTurn, "wait"))
	assert.Equal(t, NotYourTurn, CodeOf(err))
	assert.True(t, Is(err, NotYourTurn))
	assert.False(t, Is(err, IllegalMove))
	assert.Equal(t, "wait", MessageOf(err))
}

func TestCodeOf_Plain(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, Code(""), CodeOf(err))
	assert.False(t, Is(nil, IllegalMove))
	assert.Equal(t, "boom", MessageOf(err))
}
