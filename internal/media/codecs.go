package media

import "strings"

// CodecBest selects whatever the source offers; it never filters streams.
const CodecBest = "best"

// videoCodecPrefixes maps a codec family to the stream-codec prefix used in
// selection predicates. The best sentinel maps to no filter.
var videoCodecPrefixes = map[string]string{
	"h264":    "avc",
	"vp9":     "vp9",
	"av1":     "av01",
	CodecBest: "",
}

var audioCodecPrefixes = map[string]string{
	"aac":     "mp4a",
	"opus":    "opus",
	CodecBest: "",
}

// NormalizeCodec lowercases and trims a codec family name; empty becomes the
// best sentinel.
func NormalizeCodec(codec string) string {
	codec = strings.ToLower(strings.TrimSpace(codec))
	if codec == "" {
		return CodecBest
	}
	return codec
}

// VideoCodecPrefix resolves a video codec family to its selection prefix. The
// empty prefix with ok=true means no filtering.
func VideoCodecPrefix(codec string) (string, bool) {
	prefix, ok := videoCodecPrefixes[NormalizeCodec(codec)]
	return prefix, ok
}

// AudioCodecPrefix resolves an audio codec family to its selection prefix.
func AudioCodecPrefix(codec string) (string, bool) {
	prefix, ok := audioCodecPrefixes[NormalizeCodec(codec)]
	return prefix, ok
}

// VideoCodecs returns the accepted video codec family names.
func VideoCodecs() []string {
	return []string{CodecBest, "h264", "vp9", "av1"}
}

// AudioCodecs returns the accepted audio codec family names for video jobs.
func AudioCodecs() []string {
	return []string{CodecBest, "aac", "opus"}
}

// mp4 tolerates h264 and av1 with aac; webm takes vp9 and av1 with opus; mkv
// muxes anything. A best-sentinel codec counts as muxable since the extractor
// resolves it against the container's native families first.
var muxableVideo = map[string]map[string]struct{}{
	"mp4":  {"h264": {}, "av1": {}, CodecBest: {}},
	"webm": {"vp9": {}, "av1": {}, CodecBest: {}},
}

var muxableAudio = map[string]map[string]struct{}{
	"mp4":  {"aac": {}, CodecBest: {}},
	"webm": {"opus": {}, CodecBest: {}},
}

// Muxable reports whether the container natively holds streams of the given
// codec families without a remux step.
func Muxable(container, videoCodec, audioCodec string) bool {
	container = NormalizeContainer(container)
	if container == "mkv" {
		return true
	}
	video, ok := muxableVideo[container]
	if !ok {
		return false
	}
	if _, ok := video[NormalizeCodec(videoCodec)]; !ok {
		return false
	}
	audio, ok := muxableAudio[container]
	if !ok {
		return false
	}
	_, ok = audio[NormalizeCodec(audioCodec)]
	return ok
}
