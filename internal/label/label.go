// Package label shortens row labels to the host's per-row character budget.
//
// A label longer than RowLimit is spread over the row's own entry and a
// group registered on the board: the group's prefix holds the first
// RowLimit units, the entry holds the next RowLimit, and the group's suffix
// holds whatever is left, up to MaxLength in total. Hosts render a grouped
// entry as prefix+entry+suffix, so the viewer sees the full label.
//
// Lengths are counted in runes of the NFC-normalised label.
package label

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sbstats/internal/display"
)

const (
	// RowLimit is the longest entry a host accepts.
	RowLimit = 16

	// MaxLength is the longest label that can be rendered at all.
	MaxLength = 3 * RowLimit

	// ColorMarker starts a host colour code.
	ColorMarker = '§'

	groupDomain = "sbstats/group/v1"
)

// Encoded is a label split for the host.
type Encoded struct {
	// Short is the entry written to the row. Never longer than RowLimit.
	Short string
	// GroupID is empty when the label fits without a group.
	GroupID string
	Prefix  string
	Suffix  string
}

// Grouped reports whether the label needs an overflow group.
func (e Encoded) Grouped() bool { return e.GroupID != "" }

// Full reassembles the label as the host renders it.
func (e Encoded) Full() string { return e.Prefix + e.Short + e.Suffix }

// Split encodes full without touching any board. Labels longer than
// MaxLength are cut to MaxLength.
func Split(full string) Encoded {
	runes := []rune(norm.NFC.String(full))
	if len(runes) > MaxLength {
		runes = runes[:MaxLength]
	}
	if len(runes) <= RowLimit {
		return Encoded{Short: string(runes)}
	}

	enc := Encoded{
		GroupID: GroupID(string(runes)),
		Prefix:  string(runes[:RowLimit]),
	}
	if len(runes) > 2*RowLimit {
		enc.Short = string(runes[RowLimit : 2*RowLimit])
		enc.Suffix = string(runes[2*RowLimit:])
	} else {
		enc.Short = string(runes[RowLimit:])
	}
	return enc
}

// Encode splits full and makes sure the board carries the overflow group.
//
// A group that already exists under the label's id is reused as-is, so the
// same long label written twice, or by two rows, maps to one group and one
// entry. If the board refuses the group the label falls back to its first
// RowLimit units.
func Encode(board display.Board, full string) Encoded {
	enc := Split(full)
	if !enc.Grouped() {
		return enc
	}

	if g := board.Group(enc.GroupID); g != nil {
		return Encoded{
			Short:   g.DisplayName(),
			GroupID: enc.GroupID,
			Prefix:  g.Prefix(),
			Suffix:  g.Suffix(),
		}
	}

	g, err := board.RegisterGroup(enc.GroupID)
	if err != nil {
		return Encoded{Short: enc.Prefix}
	}
	g.SetPrefix(enc.Prefix)
	if enc.Suffix != "" {
		g.SetSuffix(enc.Suffix)
	}
	g.SetDisplayName(enc.Short)
	g.AddMember(enc.Short)
	return enc
}

// GroupID is the stable group name for a label: a domain-separated SHA-256,
// cut to the host's name budget.
func GroupID(full string) string {
	h := sha256.New()
	h.Write([]byte(groupDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(full))
	return hex.EncodeToString(h.Sum(nil))[:RowLimit]
}

const colorCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"

// TranslateColors replaces '&' colour codes with the host's marker, so
// "&aKills" becomes "§aKills". An '&' not followed by a code is left alone.
func TranslateColors(text string) string {
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == '&' && strings.ContainsRune(colorCodes, runes[i+1]) {
			runes[i] = ColorMarker
			runes[i+1] = toLower(runes[i+1])
		}
	}
	return string(runes)
}

// Strip cuts text to RowLimit units.
func Strip(text string) string {
	runes := []rune(norm.NFC.String(text))
	if len(runes) > RowLimit {
		runes = runes[:RowLimit]
	}
	return string(runes)
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
