package report

// Build runs the builder of every enabled section in render order and
// returns their rows. A section contributes a header row followed by its
// rows, or nothing at all when no row survived filtering.
func Build(in Input, res Resolution) []Row {
	var out []Row
	for _, section := range Sections {
		if !res.Enabled(section) {
			continue
		}
		rows := builders[section](in, res)
		if len(rows) == 0 {
			continue
		}
		out = append(out, header(section, in))
		out = append(out, rows...)
	}
	return out
}
