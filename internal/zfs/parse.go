package zfs

import "strings"

// TagOf returns the substring after "@" in a fully-qualified snapshot
// name. Comparisons of "same snapshot across servers" use the tag only,
// since pool names differ between servers (§4.2).
func TagOf(fqsn string) string {
	if i := strings.IndexByte(fqsn, '@'); i >= 0 {
		return fqsn[i+1:]
	}
	return fqsn
}

// trimEmpty drops blank lines without relaxing the anchored regexes the
// callers apply to what remains.
func trimEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func splitLines(s string) []string {
	return trimEmpty(strings.Split(s, "\n"))
}
