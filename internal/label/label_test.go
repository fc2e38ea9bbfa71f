package label

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sbstats/internal/display"
)

func newBoard(t *testing.T) display.Board {
	t.Helper()
	return display.NewMemoryHost("1.20.4", display.Capabilities{NamedScores: true}).NewBoard()
}

func TestSplit_ShortLabelIsIdentity(t *testing.T) {
	for _, in := range []string{"", "K", "Kills", strings.Repeat("x", RowLimit), "§aKills"} {
		t.Run(in, func(t *testing.T) {
			enc := Split(in)
			assert.Equal(t, in, enc.Short)
			assert.False(t, enc.Grouped())
			assert.Empty(t, enc.Prefix)
			assert.Empty(t, enc.Suffix)
		})
	}
}

func TestSplit_TwoSegments(t *testing.T) {
	full := "Mob kills this session" // 22 runes
	enc := Split(full)

	require.True(t, enc.Grouped())
	assert.Equal(t, "Mob kills this s", enc.Prefix)
	assert.Equal(t, "ession", enc.Short)
	assert.Empty(t, enc.Suffix)
	assert.Equal(t, full, enc.Full())
}

func TestSplit_ThreeSegments(t *testing.T) {
	full := "0123456789abcdefGHIJKLMNOPQRSTUVwxyz" // 36 runes
	enc := Split(full)

	require.True(t, enc.Grouped())
	assert.Equal(t, "0123456789abcdef", enc.Prefix)
	assert.Equal(t, "GHIJKLMNOPQRSTUV", enc.Short)
	assert.Equal(t, "wxyz", enc.Suffix)
	assert.Equal(t, full, enc.Full())
}

func TestSplit_RoundTripsEveryLength(t *testing.T) {
	base := strings.Repeat("abcdefghij", 5)
	for n := 0; n <= MaxLength; n++ {
		full := base[:n]
		enc := Split(full)
		assert.Equal(t, full, enc.Full(), "length %d", n)
		assert.LessOrEqual(t, len([]rune(enc.Short)), RowLimit, "length %d", n)
		assert.Equal(t, n > RowLimit, enc.Grouped(), "length %d", n)
	}
}

func TestSplit_OverlongIsTruncated(t *testing.T) {
	full := strings.Repeat("z", MaxLength+10)
	var enc Encoded
	require.NotPanics(t, func() { enc = Split(full) })
	assert.Equal(t, full[:MaxLength], enc.Full())
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	full := "§6Längster Streak" // 17 runes, more bytes
	enc := Split(full)
	require.True(t, enc.Grouped())
	assert.Equal(t, "§6Längster Strea", enc.Prefix)
	assert.Equal(t, "k", enc.Short)
}

func TestSplit_NormalizesToNFC(t *testing.T) {
	decomposed := "Ka\u0308mpfe"
	assert.Equal(t, "K\u00e4mpfe", Split(decomposed).Short)
}

func TestEncode_RegistersGroupOnce(t *testing.T) {
	board := newBoard(t)
	full := "0123456789abcdefGHIJKLMNOPQRSTUVwxyz"

	first := Encode(board, full)
	second := Encode(board, full)

	assert.Equal(t, first, second)
	g := board.Group(first.GroupID)
	require.NotNil(t, g)
	assert.Equal(t, "0123456789abcdef", g.Prefix())
	assert.Equal(t, "wxyz", g.Suffix())
	assert.Equal(t, "GHIJKLMNOPQRSTUV", g.DisplayName())
	assert.Equal(t, []string{"GHIJKLMNOPQRSTUV"}, g.Members())
}

func TestEncode_ReusesExistingGroup(t *testing.T) {
	board := newBoard(t)
	full := "Mob kills this session"

	g, err := board.RegisterGroup(GroupID(full))
	require.NoError(t, err)
	g.SetPrefix("Mob kills this s")
	g.SetDisplayName("ession")

	enc := Encode(board, full)
	assert.Equal(t, "ession", enc.Short)
	assert.Equal(t, GroupID(full), enc.GroupID)
}

func TestEncode_ShortLabelTouchesNothing(t *testing.T) {
	board := newBoard(t)
	enc := Encode(board, "Kills")
	assert.Equal(t, Encoded{Short: "Kills"}, enc)
}

func TestGroupID_StableAndBounded(t *testing.T) {
	a := GroupID("some long label that overflows")
	assert.Equal(t, a, GroupID("some long label that overflows"))
	assert.NotEqual(t, a, GroupID("some long label that overflowz"))
	assert.Len(t, a, RowLimit)
}

func TestTranslateColors(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"&aKills", "§aKills"},
		{"&AKills", "§aKills"},
		{"&lBold &rReset", "§lBold §rReset"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"&zNope", "&zNope"},
		{"trailing&", "trailing&"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslateColors(tt.in), tt.in)
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Steve", Strip("Steve"))
	assert.Equal(t, "§9AVeryLongPlaye", Strip("§9AVeryLongPlayerName"))
}
