package media

import (
	"sort"
	"strings"
)

// lossyBitrates lists the recommended bitrate menu (kbps) per lossy audio
// container. Off-menu values are accepted; the CLI only warns.
var lossyBitrates = map[string][]int{
	"mp3":  {128, 192, 256, 320},
	"aac":  {128, 192, 256},
	"opus": {96, 128, 160},
}

// losslessContainers never receive a bitrate hint.
var losslessContainers = map[string]struct{}{
	"flac": {},
	"wav":  {},
}

var videoContainers = map[string]struct{}{
	"mp4":  {},
	"mkv":  {},
	"webm": {},
}

// NormalizeContainer lowercases and trims a container name.
func NormalizeContainer(container string) string {
	return strings.ToLower(strings.TrimSpace(container))
}

// IsLossless reports whether the container stores audio without lossy
// compression.
func IsLossless(container string) bool {
	_, ok := losslessContainers[NormalizeContainer(container)]
	return ok
}

// IsAudioContainer reports whether the container is a known audio target.
func IsAudioContainer(container string) bool {
	container = NormalizeContainer(container)
	if _, ok := losslessContainers[container]; ok {
		return true
	}
	_, ok := lossyBitrates[container]
	return ok
}

// IsVideoContainer reports whether the container is a known video target.
func IsVideoContainer(container string) bool {
	_, ok := videoContainers[NormalizeContainer(container)]
	return ok
}

// LossyBitrates returns the recommended bitrate menu for a lossy container,
// or nil for lossless or unknown containers.
func LossyBitrates(container string) []int {
	menu, ok := lossyBitrates[NormalizeContainer(container)]
	if !ok {
		return nil
	}
	out := make([]int, len(menu))
	copy(out, menu)
	return out
}

// OnBitrateMenu reports whether the bitrate appears on the container's
// recommended menu. Lossless and unknown containers have no menu.
func OnBitrateMenu(container string, bitrateKbps int) bool {
	for _, b := range LossyBitrates(container) {
		if b == bitrateKbps {
			return true
		}
	}
	return false
}

// AudioContainers returns the known audio containers, lossless first, each
// group sorted alphabetically.
func AudioContainers() []string {
	lossless := make([]string, 0, len(losslessContainers))
	for name := range losslessContainers {
		lossless = append(lossless, name)
	}
	sort.Strings(lossless)

	lossy := make([]string, 0, len(lossyBitrates))
	for name := range lossyBitrates {
		lossy = append(lossy, name)
	}
	sort.Strings(lossy)

	return append(lossless, lossy...)
}

// VideoContainers returns the known video containers sorted alphabetically.
func VideoContainers() []string {
	out := make([]string, 0, len(videoContainers))
	for name := range videoContainers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
