package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidToken(t *testing.T) {
	valid := []string{
		"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]",
		"ExpoPushToken[abc123]",
		"3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"3F2504E0-4F89-11D3-9A0C-0305E82C3301",
	}
	for _, tok := range valid {
		assert.True(t, ValidToken(tok), tok)
	}

	invalid := []string{
		"",
		"ExponentPushToken[]",
		"ExponentPushToken[abc",
		"fcm:abcdef",
		"3f2504e0-4f89-11d3-9a0c",
		" ExponentPushToken[abc]",
	}
	for _, tok := range invalid {
		assert.False(t, ValidToken(tok), tok)
	}
}
