package atlas

import "strings"

// MenuPlaceholder is the first, non-selectable entry of the atlas menu.
const MenuPlaceholder = "Load atlas"

// MenuEntries formats descriptors for a selection menu. The placeholder is
// always first; the remaining order follows list.
func MenuEntries(list []Descriptor) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, MenuPlaceholder)
	for _, d := range list {
		out = append(out, d.String())
	}
	return out
}

// ParseMenuEntry recovers the atlas name from a menu entry. The placeholder
// and empty entries return ok=false.
func ParseMenuEntry(entry string) (name string, ok bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" || entry == MenuPlaceholder {
		return "", false
	}
	name, _, _ = strings.Cut(entry, " ")
	return strings.TrimSpace(name), true
}
