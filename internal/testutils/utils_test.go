package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandom(t *testing.T) {
	assert.NotEqual(t, RandomHash(t), RandomHash(t))
	assert.NotEqual(t, RandomAddress(t), RandomAddress(t))
}

func TestRequireSameDump(t *testing.T) {
	type state struct {
		Reserve string `json:"reserve"`
	}
	RequireSameDump(t, state{Reserve: "1"}, state{Reserve: "1"})
	assert.Equal(t, "{\n  \"reserve\": \"1\"\n}", Dump(t, state{Reserve: "1"}))
}
