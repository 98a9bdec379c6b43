package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reel/internal/media"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported containers, codecs, and templates",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			audioRows := make([][]string, 0)
			for _, container := range media.AudioContainers() {
				kind := "lossy"
				bitrates := joinInts(media.LossyBitrates(container), ", ")
				if media.IsLossless(container) {
					kind = "lossless"
					bitrates = ""
				}
				audioRows = append(audioRows, []string{container, kind, bitrates})
			}
			fmt.Fprintln(out, "Audio containers")
			fmt.Fprintln(out, renderTable(
				[]string{"Container", "Type", "Recommended bitrates (kbps)"},
				audioRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			videoRows := make([][]string, 0)
			for _, container := range media.VideoContainers() {
				videoRows = append(videoRows, []string{
					container,
					muxableCodecs(container, media.VideoCodecs(), func(codec string) bool {
						return media.Muxable(container, codec, media.CodecBest)
					}),
					muxableCodecs(container, media.AudioCodecs(), func(codec string) bool {
						return media.Muxable(container, media.CodecBest, codec)
					}),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Video containers")
			fmt.Fprintln(out, renderTable(
				[]string{"Container", "Video codecs", "Audio codecs"},
				videoRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Quality presets: %s\n", strings.Join(media.QualityPresets(), ", "))

			templateRows := make([][]string, 0)
			for _, name := range media.OutputTemplates() {
				expansion, _ := media.OutputTemplate(name)
				templateRows = append(templateRows, []string{name, expansion})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Output templates")
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Expansion"},
				templateRows,
				[]columnAlignment{alignLeft, alignLeft},
			))
		},
	}
}

func muxableCodecs(container string, codecs []string, muxable func(string) bool) string {
	if media.NormalizeContainer(container) == "mkv" {
		return "any"
	}
	names := make([]string, 0, len(codecs))
	for _, codec := range codecs {
		if codec == media.CodecBest {
			continue
		}
		if muxable(codec) {
			names = append(names, codec)
		}
	}
	return strings.Join(names, ", ")
}
