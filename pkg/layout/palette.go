package layout

// Lane palettes. Colors repeat once there are more lanes than entries,
// so any palette length works. Both palettes keep the trunk lane on the
// green family and reserve grey for mid-order lanes, matching the usual
// history-view look on either background.
var (
	// PaletteDark suits dark backgrounds and is the default.
	PaletteDark = []string{
		"#00ff00",
		"#ff5c5c",
		"#4fa3ff",
		"#d56bff",
		"#a0a0a0",
		"#d09a6b",
		"#ffb347",
	}

	// PaletteLight suits light backgrounds.
	PaletteLight = []string{
		"#00cc00",
		"#cc0000",
		"#0055cc",
		"#aa00aa",
		"#555555",
		"#8b4513",
		"#ff8c00",
	}

	// DefaultPalette is used whenever a caller passes no palette.
	DefaultPalette = PaletteDark
)

// colorFor cycles the palette by lane column. The palette must be
// non-empty; Build normalizes empty input to DefaultPalette before any
// lookup.
func colorFor(column int, palette []string) string {
	return palette[column%len(palette)]
}
