package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotNull(t *testing.T) {
	assert.Equal(t, 3, NotNull(Of(3), 7))
	assert.Equal(t, 7, NotNull[int](nil, 7))
	assert.Equal(t, false, NotNull(Of(false), true))
}

