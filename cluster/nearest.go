package cluster

import "github.com/carbocation/epitopes/promiscuous"

// Nearest returns, for each binder, the distance to the closest binder of the
// same protein at a different position. It is 0 when there is none.
func Nearest(bs []promiscuous.Binder) []int {
	byName := make(map[string][]int)
	for _, b := range bs {
		byName[b.Name] = append(byName[b.Name], b.Pos)
	}

	out := make([]int, len(bs))
	for i, b := range bs {
		best := 0
		for _, p := range byName[b.Name] {
			if p == b.Pos {
				continue
			}
			if d := abs(p - b.Pos); best == 0 || d < best {
				best = d
			}
		}
		out[i] = best
	}

	return out
}
