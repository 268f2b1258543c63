package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_RequiresScope(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--scope is required")
}

func TestSearchCmd_HasTopFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top")
	require.NotNil(t, flag, "top flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--scope", "ws-1", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchScope = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "docs/report.md")
	assert.Contains(t, buf.String(), "0.91")
	assert.Contains(t, buf.String(), "quarterly revenue grew")
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := searchService.(*mockSearchService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"search", "--scope", "ws-1", "--mode", "keyword",
		"-n", "5", "--min-score", "0.3", "--path", "docs/", "test query",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		searchScope, searchPath, searchMode = "", "", ""
		searchTopK, searchMinScore = 10, 0
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "ws-1", mock.lastOpts.ScopeID)
	assert.Equal(t, domain.SearchModeKeyword, mock.lastOpts.Mode)
	assert.Equal(t, 5, mock.lastOpts.TopK)
	assert.Equal(t, 0.3, mock.lastOpts.MinScore)
	assert.Equal(t, "docs/", mock.lastOpts.PathPrefix)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--scope", "ws-1", "--json", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchScope = ""
		searchJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Hits\"")
	assert.Contains(t, buf.String(), "\"chunk-1\"")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService.(*mockSearchService).results = &domain.SearchResults{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--scope", "ws-1", "nothing matches"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchScope = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestSearchCmd_ErrorsWithoutService(t *testing.T) {
	oldSearch := searchService
	searchService = nil
	defer func() { searchService = oldSearch }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "--scope", "ws-1", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchScope = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSnippet_CollapsesWhitespaceAndTruncates(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n  b\tc"))

	long := snippet(string(bytes.Repeat([]byte("word "), 100)))
	assert.LessOrEqual(t, len(long), snippetLength+3)
	assert.Contains(t, long, "...")
}
