package language

import "strings"

// Wildcard selects every subtitle track the source offers.
const Wildcard = "all"

type entry struct {
	code2 string   // ISO 639-1 tag
	code3 string   // ISO 639-2 primary (3-letter)
	alt3  string   // ISO 639-2 bibliographic variant (e.g. "fre" vs "fra")
	words []string // full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", []string{"english"}},
	{"es", "spa", "", []string{"spanish"}},
	{"fr", "fra", "fre", []string{"french"}},
	{"de", "deu", "ger", []string{"german"}},
	{"it", "ita", "", []string{"italian"}},
	{"pt", "por", "", []string{"portuguese"}},
	{"ja", "jpn", "", []string{"japanese"}},
	{"ko", "kor", "", []string{"korean"}},
	{"zh", "zho", "chi", []string{"chinese"}},
	{"ru", "rus", "", []string{"russian"}},
	{"ar", "ara", "", []string{"arabic"}},
	{"hi", "hin", "", []string{"hindi"}},
	{"nl", "nld", "dut", []string{"dutch"}},
	{"pl", "pol", "", []string{"polish"}},
	{"sv", "swe", "", []string{"swedish"}},
	{"da", "dan", "", []string{"danish"}},
	{"no", "nor", "", []string{"norwegian"}},
	{"fi", "fin", "", []string{"finnish"}},
	{"tr", "tur", "", []string{"turkish"}},
	{"vi", "vie", "", []string{"vietnamese"}},
	{"id", "ind", "", []string{"indonesian"}},
	{"th", "tha", "", []string{"thai"}},
	{"uk", "ukr", "", []string{"ukrainian"}},
	{"cs", "ces", "cze", []string{"czech"}},
	{"el", "ell", "gre", []string{"greek"}},
	{"he", "heb", "", []string{"hebrew"}},
	{"hu", "hun", "", []string{"hungarian"}},
	{"ro", "ron", "rum", []string{"romanian"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize canonicalizes one subtitle language selector. Full names and
// three-letter codes map to their two-letter tag; a region or script subtag
// is carried through as typed ("PT-br" becomes "pt-br"). Two-letter tags
// outside the table pass through so rarer languages still work. The "all"
// wildcard is preserved. Anything else normalizes to the empty string.
func Normalize(selector string) string {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ""
	}
	primary, rest, hasRest := strings.Cut(selector, "-")
	primary = strings.ToLower(strings.TrimSpace(primary))
	if primary == Wildcard && !hasRest {
		return Wildcard
	}
	if e := lookup(primary); e != nil {
		primary = e.code2
	} else if len(primary) != 2 {
		return ""
	}
	if !hasRest {
		return primary
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return primary
	}
	return primary + "-" + rest
}

// NormalizeList canonicalizes a selector list in order, dropping entries
// Normalize rejects and collapsing duplicates.
func NormalizeList(selectors []string) []string {
	if len(selectors) == 0 {
		return nil
	}
	out := make([]string, 0, len(selectors))
	seen := make(map[string]struct{}, len(selectors))
	for _, selector := range selectors {
		normalized := Normalize(selector)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
