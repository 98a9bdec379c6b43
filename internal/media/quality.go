package media

import "strings"

// QualityBest places no ceiling on stream height.
const QualityBest = "Best Available"

// qualityHeights maps a named preset to its height ceiling in pixels. The
// best preset maps to zero, meaning no ceiling.
var qualityHeights = map[string]int{
	"4k":    2160,
	"2k":    1440,
	"1080p": 1080,
	"720p":  720,
	"480p":  480,
	strings.ToLower(QualityBest): 0,
}

// QualityHeight resolves a preset name to its height ceiling. Zero with
// ok=true means no ceiling; ok=false means the preset is unknown.
func QualityHeight(preset string) (int, bool) {
	height, ok := qualityHeights[strings.ToLower(strings.TrimSpace(preset))]
	return height, ok
}

// QualityPresets returns the accepted preset names, highest ceiling first.
func QualityPresets() []string {
	return []string{QualityBest, "4K", "2K", "1080p", "720p", "480p"}
}
