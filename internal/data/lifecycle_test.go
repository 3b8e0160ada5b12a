package data

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	tab, err := LoadLifecycleTable("")
	require.NoError(t, err)
	th := tab.Thresholds()
	assert.Zero(t, th[0])
	for i := 1; i < len(th); i++ {
		assert.Greater(t, th[i], th[i-1])
	}
	assert.Less(t, th[len(th)-1], 1.0)
}

func TestParseRejectsBadTables(t *testing.T) {
	base := `
stages: {thresholds: [0, 0.1, 0.2, 0.3, 0.4, 0.5]}
lifespan: {min_minutes: 10, max_minutes: 20}
names: {prefixes: [a], suffixes: [b]}
`
	_, err := ParseLifecycleTable([]byte(base))
	require.NoError(t, err)

	bad := map[string]string{
		"five thresholds": strings.Replace(base, "0, 0.1, 0.2, 0.3, 0.4, 0.5", "0, 0.1, 0.2, 0.3, 0.4", 1),
		"not from zero":   strings.Replace(base, "[0, 0.1", "[0.05, 0.1", 1),
		"not increasing":  strings.Replace(base, "0.2, 0.3", "0.3, 0.2", 1),
		"reaches one":     strings.Replace(base, "0.4, 0.5", "0.4, 1.0", 1),
		"empty range":     strings.Replace(base, "max_minutes: 20", "max_minutes: 5", 1),
		"no names":        strings.Replace(base, "prefixes: [a]", "prefixes: []", 1),
		"not yaml":        "stages: [",
	}
	for name, raw := range bad {
		_, err := ParseLifecycleTable([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.yaml")
	require.NoError(t, os.WriteFile(path, defaultLifecycleYAML, 0o644))
	tab, err := LoadLifecycleTable(path)
	require.NoError(t, err)
	assert.Equal(t, "face_smile", tab.Cosmetics.Face)

	_, err = LoadLifecycleTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBreederRolls(t *testing.T) {
	tab, err := LoadLifecycleTable("")
	require.NoError(t, err)
	b := NewBreeder(tab, rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		ls := b.Lifespan(1)
		assert.GreaterOrEqual(t, ls, tab.Lifespan.MinMinutes)
		assert.LessOrEqual(t, ls, tab.Lifespan.MaxMinutes)
	}
	// The generation bonus is capped.
	capped := tab.Lifespan.MaxMinutes * (1 + tab.Lifespan.MaxBonus)
	for i := 0; i < 200; i++ {
		assert.LessOrEqual(t, b.Lifespan(1000), capped)
	}

	name := b.Name(1)
	require.NotEmpty(t, name)
	assert.True(t, unicode.IsUpper([]rune(name)[0]), "name %q should be title-cased", name)
}
