package catalogue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoGroups has 2 groups and 5 functions.
const twoGroups = `{
  "ENTITY": {
    "DOES_ENTITY_EXIST": {"params": [{"name": "entity", "type": "Entity"}], "return_type": "BOOL", "hash": "0x7239B21A38F536BA"},
    "DELETE_ENTITY": {"params": [{"name": "entity", "type": "Entity*"}], "return_type": "void", "hash": "0xAE3CBE5BF394C9C9"},
    "GET_ENTITY_MODEL": {"params": [{"name": "entity", "type": "Entity"}], "return_type": "Hash", "hash": "0xDE3B2D3CA6E82C2F"}
  },
  "PLAYER": {
    "PLAYER_ID": {"params": [], "return_type": "Player", "hash": "0x4F8644AF03D0E0D6"},
    "PLAYER_PED_ID": {"params": [], "return_type": "Ped", "hash": "0xD80958FC74E988A6"}
  }
}`

// captureLogger returns a logger that records every line it emits.
func captureLogger(lines *[]string) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*lines = append(*lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})
}

func TestDecodePreservesOrderAndCounts(t *testing.T) {
	cat, err := Decode([]byte(twoGroups))
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, 5, cat.FunctionCount())
	assert.Equal(t, []string{"ENTITY", "PLAYER"}, cat.GroupNames())

	var keys []string
	require.NoError(t, cat.Each(func(group, key string, f *Function) error {
		keys = append(keys, group+"/"+key)
		return nil
	}))
	assert.Equal(t, []string{
		"ENTITY/DOES_ENTITY_EXIST",
		"ENTITY/DELETE_ENTITY",
		"ENTITY/GET_ENTITY_MODEL",
		"PLAYER/PLAYER_ID",
		"PLAYER/PLAYER_PED_ID",
	}, keys)
}

func TestDecodeEntryFields(t *testing.T) {
	cat, err := Decode([]byte(`{"Entity": {"DoesEntityExist": {"params": [{"name":"entity","type":"Entity"}], "return":"bool", "hash": "0x1234"}}}`))
	require.NoError(t, err)

	g, ok := cat.Group("Entity")
	require.True(t, ok)
	f, ok := g.Get("DoesEntityExist")
	require.True(t, ok)

	assert.Equal(t, "DoesEntityExist", f.Name, "name falls back to the key")
	assert.Equal(t, "bool", f.ReturnType, "\"return\" is an alias of \"return_type\"")
	assert.Equal(t, Hash{Value: 0x1234, Set: true}, f.Hash)
	assert.Equal(t, []Param{{Name: "entity", Type: "Entity"}}, f.Params)
}

func TestDecodeHashKeyedEntries(t *testing.T) {
	cat, err := Decode([]byte(`{
		"MISC": {
			"0x9CD8E98D8C1F8B9D": {"name": "GET_GAME_TIMER", "params": [], "return_type": "int", "build": 323},
			"0x0BADBFA3B172435F": {"params": [], "return_type": "void"}
		}
	}`))
	require.NoError(t, err)

	g, ok := cat.Group("MISC")
	require.True(t, ok)

	timer, _ := g.Get("0x9CD8E98D8C1F8B9D")
	assert.Equal(t, "GET_GAME_TIMER", timer.Name)
	assert.Equal(t, uint64(0x9CD8E98D8C1F8B9D), timer.Hash.Value)
	assert.Equal(t, "323", timer.Build)

	unnamed, _ := g.Get("0x0BADBFA3B172435F")
	assert.Equal(t, "_0xBADBFA3B172435F", unnamed.Name)
	assert.True(t, unnamed.Hash.Set)
}

func TestHashUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  Hash
	}{
		{`"0x1234"`, Hash{Value: 0x1234, Set: true}},
		{`"0XABCDEF"`, Hash{Value: 0xABCDEF, Set: true}},
		{`4660`, Hash{Value: 4660, Set: true}},
		{`"4660"`, Hash{Value: 4660, Set: true}},
		{`""`, Hash{}},
		{`null`, Hash{}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			var h Hash
			require.NoError(t, h.UnmarshalJSON([]byte(tc.input)))
			assert.Equal(t, tc.want, h)
		})
	}

	var h Hash
	assert.Error(t, h.UnmarshalJSON([]byte(`"0xZZ"`)))
	assert.Equal(t, "0x1234", Hash{Value: 0x1234, Set: true}.String())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyDocument},
		{"whitespace", " \n\t", ErrEmptyDocument},
		{"truncated", twoGroups[:len(twoGroups)/2], ErrMalformed},
		{"garbage", "not json", ErrMalformed},
		{"array", "[]", ErrMalformed},
		{"null", "null", ErrNoGroups},
		{"no groups", "{}", ErrNoGroups},
		{"only null groups", `{"A": null, "B": null}`, ErrNoGroups},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := Decode([]byte(tc.input))
			require.Error(t, err)
			assert.Nil(t, cat)
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestEmbeddedCatalogueDecodes(t *testing.T) {
	cat, err := Decode(EmbeddedJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLAYER", "ENTITY", "VEHICLE", "MISC"}, cat.GroupNames())
	assert.Equal(t, 15, cat.FunctionCount())

	require.NoError(t, cat.Each(func(group, key string, f *Function) error {
		assert.NotEmpty(t, f.Name, "%s/%s", group, key)
		assert.True(t, f.Hash.Set, "%s/%s", group, key)
		return nil
	}))
}

func TestResolveMissingCacheUsesFallback(t *testing.T) {
	var lines []string
	// Default verbosity: the fallback is reported without -v.
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{})
	r := &Resolver{
		CachePath: filepath.Join(t.TempDir(), DefaultCachePath),
		Fallback:  []byte(twoGroups),
		Logger:    logger,
	}

	cat := r.Resolve()
	require.NotNil(t, cat)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, 5, cat.FunctionCount())
	assert.Contains(t, strings.Join(lines, "\n"), "No cached catalogue, using fallback")
}

func TestResolveCorruptCacheUsesFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"truncated", twoGroups[:40]},
		{"invalid", "{not: json}"},
		{"null", "null"},
		{"only null groups", `{"A": null}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultCachePath)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			var lines []string
			r := &Resolver{CachePath: path, Fallback: []byte(twoGroups), Logger: captureLogger(&lines)}

			cat := r.Resolve()
			require.NotNil(t, cat)
			assert.Equal(t, 5, cat.FunctionCount())

			logs := strings.Join(lines, "\n")
			assert.Contains(t, logs, "Invalid catalogue file")
			assert.Contains(t, logs, "Using fallback.")
		})
	}
}

func TestResolveUsesValidCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCachePath)
	require.NoError(t, os.WriteFile(path, []byte(twoGroups), 0644))

	r := NewResolver(path, logr.Discard())
	cat := r.Resolve()
	require.NotNil(t, cat)
	assert.Equal(t, []string{"ENTITY", "PLAYER"}, cat.GroupNames())
	assert.Equal(t, 5, cat.FunctionCount())
}

func TestResolveUnreadableCacheUsesFallback(t *testing.T) {
	// A directory cannot be read as a file.
	dir := t.TempDir()

	var lines []string
	r := &Resolver{CachePath: dir, Fallback: []byte(twoGroups), Logger: captureLogger(&lines)}
	cat := r.Resolve()
	require.NotNil(t, cat)
	assert.Equal(t, 2, cat.Len())
	assert.Contains(t, strings.Join(lines, "\n"), "Unable to use the catalogue file on disk")
}

func TestResolveBadFallbackReturnsNil(t *testing.T) {
	r := &Resolver{Fallback: []byte("{"), Logger: logr.Discard()}
	assert.Nil(t, r.Resolve())
}

func TestResolveDefaultsToEmbedded(t *testing.T) {
	r := NewResolver("", logr.Discard())
	cat := r.Resolve()
	require.NotNil(t, cat)
	assert.Equal(t, 4, cat.Len())
}
