package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapGroups(t *testing.T) {
	tests := []struct {
		name       string
		groups     [][]string
		printWidth int
		indent     string
		tabWidth   int
		want       []string
	}{
		{
			name:       "everything fits",
			groups:     [][]string{{"flex"}, {"p-4", "m-2"}},
			printWidth: 80,
			want:       []string{"flex p-4 m-2"},
		},
		{
			name:       "exact width fits",
			groups:     [][]string{{"flex"}, {"p-4", "m-2"}, {"w-full"}},
			printWidth: 12,
			want:       []string{"flex p-4 m-2", "w-full"},
		},
		{
			name:       "indent narrows the line",
			groups:     [][]string{{"flex"}, {"p-4", "m-2"}, {"w-full"}},
			printWidth: 12,
			indent:     "  ",
			want:       []string{"flex", "p-4 m-2", "w-full"},
		},
		{
			name:       "tab indent uses tab width",
			groups:     [][]string{{"aaaa"}, {"bbbb"}},
			printWidth: 12,
			indent:     "\t",
			tabWidth:   4,
			want:       []string{"aaaa", "bbbb"},
		},
		{
			name:       "group never split",
			groups:     [][]string{{"aaaa", "bbbb", "cccc"}, {"d"}},
			printWidth: 5,
			want:       []string{"aaaa bbbb cccc", "d"},
		},
		{
			name:       "empty groups filtered",
			groups:     [][]string{{}, {"flex"}, nil, {"block"}},
			printWidth: 80,
			want:       []string{"flex block"},
		},
		{
			name:       "wide runes measured by display width",
			groups:     [][]string{{"日本"}, {"ab"}},
			printWidth: 6,
			want:       []string{"日本", "ab"},
		},
		{
			name:       "no groups",
			groups:     nil,
			printWidth: 80,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapGroups(tt.groups, tt.printWidth, tt.indent, tt.tabWidth)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrapGroupsFirstLineIsMaximalPrefix(t *testing.T) {
	groups := [][]string{{"aa"}, {"bbb"}, {"c"}, {"dddd"}, {"ee"}}

	for width := 1; width <= 20; width++ {
		lines := WrapGroups(groups, width, "", 2)

		// Longest prefix of groups whose joined length fits.
		fit, length := 0, -1
		for _, group := range groups {
			next := length + 1 + len(group[0])
			if next > width {
				break
			}
			fit, length = fit+1, next
		}
		if fit == 0 {
			fit = 1
		}

		want := ""
		for i := 0; i < fit; i++ {
			if i > 0 {
				want += " "
			}
			want += groups[i][0]
		}
		assert.Equal(t, want, lines[0], "width %d", width)
	}
}

func TestIndentUnit(t *testing.T) {
	assert.Equal(t, "  ", IndentUnit(false, 2))
	assert.Equal(t, "    ", IndentUnit(false, 4))
	assert.Equal(t, "\t", IndentUnit(true, 4))
	assert.Equal(t, "", IndentUnit(false, -1))
}

func TestIndentWidth(t *testing.T) {
	assert.Equal(t, 0, IndentWidth("", 2))
	assert.Equal(t, 4, IndentWidth("    ", 2))
	assert.Equal(t, 6, IndentWidth("\t\t", 3))
	assert.Equal(t, 5, IndentWidth("\t ", 4))
}
