package media

// Loudness normalization targets for the loudnorm filter. The interactive
// default is -14 LUFS; one-shot command line runs historically normalized to
// -16 LUFS. Both remain selectable through configuration.
const (
	LoudnessIntegratedDefault = -14.0
	LoudnessIntegratedOneShot = -16.0
	LoudnessTruePeakDefault   = -1.5
	LoudnessRangeDefault      = 11.0
)
