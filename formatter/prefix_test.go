package formatter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classfmt/entities"
)

func TestBuildPrefixTable(t *testing.T) {
	table := BuildPrefixTable(entities.CategoryConfig{
		{Name: "Spacing", Prefixes: "p- px-"},
		{Name: "Borders", Prefixes: "  border   border- "},
		{Name: "State", Prefixes: "group*"},
	})

	want := []entities.PrefixEntry{
		{Category: "Borders", RawPrefix: "border-", MatchPrefix: "border-", Length: 7},
		{Category: "Borders", RawPrefix: "border", MatchPrefix: "border", Length: 6},
		{Category: "State", RawPrefix: "group*", MatchPrefix: "group", IsWildcard: true, Length: 5},
		{Category: "Spacing", RawPrefix: "px-", MatchPrefix: "px-", Length: 3},
		{Category: "Spacing", RawPrefix: "p-", MatchPrefix: "p-", Length: 2},
	}

	if diff := cmp.Diff(want, table.Entries); diff != "" {
		t.Errorf("BuildPrefixTable() entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Spacing", "Borders", "State"}, table.Categories())
	assert.Equal(t, []string{"border", "border-"}, table.RawPrefixes("Borders"))
}

func TestBuildPrefixTableEqualLengthsKeepDeclarationOrder(t *testing.T) {
	table := BuildPrefixTable(entities.CategoryConfig{
		{Name: "A", Prefixes: "m- p-"},
		{Name: "B", Prefixes: "w-"},
	})

	var got []string
	for _, entry := range table.Entries {
		got = append(got, entry.RawPrefix)
	}
	assert.Equal(t, []string{"m-", "p-", "w-"}, got)
}

func TestBuildPrefixTableMergesDuplicates(t *testing.T) {
	table := BuildPrefixTable(entities.CategoryConfig{
		{Name: "Spacing", Prefixes: "p- p-"},
		{Name: "Spacing", Prefixes: "m-"},
	})

	assert.Len(t, table.Entries, 2)
	assert.Equal(t, []string{"Spacing"}, table.Categories())
	assert.Equal(t, []string{"p-", "m-"}, table.RawPrefixes("Spacing"))
}

func TestBuildPrefixTableEmpty(t *testing.T) {
	table := BuildPrefixTable(nil)

	assert.True(t, table.Empty())
	assert.Empty(t, table.Categories())

	_, ok := table.Match("flex", nil)
	assert.False(t, ok)
}

func TestPrefixTableMatch(t *testing.T) {
	table := BuildPrefixTable(entities.CategoryConfig{
		{Name: "Borders", Prefixes: "border"},
		{Name: "BorderWidth", Prefixes: "border-"},
		{Name: "State", Prefixes: "group*"},
		{Name: "Background", Prefixes: "bg-"},
		{Name: "Layout", Prefixes: "flex"},
	})
	viewports := []string{"sm", "md"}

	tests := []struct {
		name         string
		token        string
		wantCategory string
		wantOK       bool
	}{
		{name: "longest prefix wins", token: "border-2", wantCategory: "BorderWidth", wantOK: true},
		{name: "shorter prefix still matches", token: "border", wantCategory: "Borders", wantOK: true},
		{name: "wildcard exact", token: "group", wantCategory: "State", wantOK: true},
		{name: "wildcard dash", token: "group-hover", wantCategory: "State", wantOK: true},
		{name: "wildcard slash", token: "group/sidebar", wantCategory: "State", wantOK: true},
		{name: "wildcard boundary", token: "groupware", wantOK: false},
		{name: "viewport stripped", token: "md:flex", wantCategory: "Layout", wantOK: true},
		{name: "unknown viewport kept", token: "xl:flex", wantOK: false},
		{name: "interpolation cut", token: "bg-${tone}-500", wantCategory: "Background", wantOK: true},
		{name: "interpolation first", token: "${tone}-bg", wantOK: false},
		{name: "unknown", token: "custom", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := table.Match(tt.token, viewports)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantCategory, entry.Category)
			}
		})
	}
}

func TestPrefixTableHasPrefix(t *testing.T) {
	table := BuildPrefixTable(entities.CategoryConfig{
		{Name: "Background", Prefixes: "bg-"},
		{Name: "State", Prefixes: "group*"},
	})

	assert.True(t, table.HasPrefix("bg-"))
	assert.True(t, table.HasPrefix("bg-red-500"))
	assert.True(t, table.HasPrefix("groupware"))
	assert.False(t, table.HasPrefix("text-sm"))
	assert.False(t, table.HasPrefix(""))
}
