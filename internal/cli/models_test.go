package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "models")
	require.NoError(t, err)

	assert.Contains(t, stdout, "counter    width 16")
	assert.Contains(t, stdout, "params: limit")
	assert.Contains(t, stdout, "register   width 8 ")
	assert.Contains(t, stdout, "params: init")
	assert.Contains(t, stdout, "wire       width 8 ")
}

func TestModelsCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "models", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []ModelInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)

	names := make([]string, len(resp.Data))
	for i, m := range resp.Data {
		names[i] = m.Name
		assert.NotNil(t, m.Params, "params is always a list")
	}
	assert.Equal(t, []string{"counter", "register", "wire"}, names)
	assert.Equal(t, []string{"limit"}, resp.Data[0].Params)
	assert.Empty(t, resp.Data[2].Params)
}

func TestModelsCommand_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, "models", "extra")
	require.Error(t, err)
}
