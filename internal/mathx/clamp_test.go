package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5, 0, 10))
	assert.Equal(t, 10, Clamp(15, 0, 10))
	assert.Equal(t, 7, Clamp(7, 0, 10))
	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 2.0))
}
