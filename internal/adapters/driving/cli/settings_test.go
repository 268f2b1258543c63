package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarrydev/quarry/internal/core/domain"
)

func TestSettingsCmd_Use(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	commands := settingsCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "show")
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "embedding")
}

func TestSettingsShowCmd_PrintsSections(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[Embedding]")
	assert.Contains(t, buf.String(), "[Chunking]")
	assert.Contains(t, buf.String(), "[Search]")
	assert.Contains(t, buf.String(), "[Queue]")
	assert.Contains(t, buf.String(), "semantic search disabled")
}

func TestSettingsShowCmd_MasksAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settingsService.(*mockSettingsService).embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
		APIKey:   "sk-verysecretkey12345",
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.NotContains(t, buf.String(), "sk-verysecretkey12345")
	assert.Contains(t, buf.String(), "sk-v...2345")
}

func TestSettingsSetCmd_DetectsValueTypes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := settingsService.(*mockSettingsService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	rootCmd.SetArgs([]string{"settings", "set", "chunking.max_tokens", "512"})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"settings", "set", "search.mode", "keyword"})
	assert.NoError(t, rootCmd.Execute())
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	assert.Equal(t, int64(512), mock.set["chunking.max_tokens"])
	assert.Equal(t, "keyword", mock.set["search.mode"])
}

func TestMaskAPIKey_ShortKeysFullyMasked(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(42), parseValue("42"))
	assert.Equal(t, 0.75, parseValue("0.75"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "hybrid", parseValue("hybrid"))
}
