package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLightningPubkey(t *testing.T) {
	assert.NoError(t, ValidateLightningPubkey("02a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"))
	assert.NoError(t, ValidateLightningPubkey("03a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"))

	assert.Error(t, ValidateLightningPubkey(""))
	assert.Error(t, ValidateLightningPubkey("02abcd"))
	assert.Error(t, ValidateLightningPubkey("04a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"))
	assert.Error(t, ValidateLightningPubkey("02g1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"))
}

func TestValidateHTTPURL(t *testing.T) {
	assert.NoError(t, ValidateHTTPURL("https://mempool.space/api"))
	assert.NoError(t, ValidateHTTPURL("http://localhost:8029"))

	assert.Error(t, ValidateHTTPURL("ftp://example.com"))
	assert.Error(t, ValidateHTTPURL("https://"))
	assert.Error(t, ValidateHTTPURL("not a url"))
}

func TestFilter(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
}
