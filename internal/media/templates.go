package media

import "sort"

// DefaultTemplate names the plain title template.
const DefaultTemplate = "default"

// outputTemplates maps a template name to the extractor output template it
// expands to. Directory separators inside a template create subdirectories
// under the destination.
var outputTemplates = map[string]string{
	DefaultTemplate:     "%(title)s.%(ext)s",
	"title-artist":      "%(title)s - %(artist)s.%(ext)s",
	"album-track":       "%(artist)s/%(album)s/%(track_number)02d - %(title)s.%(ext)s",
	"year-artist-title": "%(release_year)s - %(artist)s - %(title)s.%(ext)s",
	"playlist":          "%(playlist_title)s/%(playlist_index)02d - %(title)s.%(ext)s",
}

// OutputTemplate resolves a named template. The empty name resolves to the
// default template.
func OutputTemplate(name string) (string, bool) {
	if name == "" {
		name = DefaultTemplate
	}
	tmpl, ok := outputTemplates[name]
	return tmpl, ok
}

// OutputTemplates returns the template names sorted alphabetically.
func OutputTemplates() []string {
	names := make([]string, 0, len(outputTemplates))
	for name := range outputTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
