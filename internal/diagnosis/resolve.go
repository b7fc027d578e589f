package diagnosis

// Resolve narrows candidates to those sharing the highest priority,
// keeping their emission order.
func Resolve(candidates []Mistake) []Mistake {
	if len(candidates) == 0 {
		return nil
	}
	best := Priority(candidates[0].ID)
	for _, c := range candidates[1:] {
		if p := Priority(c.ID); p > best {
			best = p
		}
	}
	out := make([]Mistake, 0, len(candidates))
	for _, c := range candidates {
		if Priority(c.ID) == best {
			out = append(out, c)
		}
	}
	return out
}
