package replacement

// OptimalVictimFinder evicts the frame whose page is used again farthest in
// the future. A page that is never used again is always preferred, and ties
// go to the lowest frame number.
type OptimalVictimFinder struct{}

// NewOptimalVictimFinder returns a newly constructed optimal victim finder.
func NewOptimalVictimFinder() *OptimalVictimFinder {
	return &OptimalVictimFinder{}
}

// FindVictim scans the lookahead once, recording the first reference of every
// resident page, and stops as soon as all residents have been seen.
func (e *OptimalVictimFinder) FindVictim(ctx VictimContext) int {
	if len(ctx.Residents) == 0 {
		panic("no resident page to evict")
	}

	framesOfPage := make(map[int][]int, len(ctx.Residents))
	for frame, page := range ctx.Residents {
		framesOfPage[page] = append(framesOfPage[page], frame)
	}

	const never = -1

	nextUse := make([]int, len(ctx.Residents))
	for i := range nextUse {
		nextUse[i] = never
	}

	unseen := len(framesOfPage)
	for distance, addr := range ctx.Lookahead {
		if unseen == 0 {
			break
		}

		frames, resident := framesOfPage[addr.PageNumber()]
		if !resident || nextUse[frames[0]] != never {
			continue
		}

		for _, f := range frames {
			nextUse[f] = distance
		}
		unseen--
	}

	victim := 0
	for frame := 1; frame < len(nextUse); frame++ {
		if farther(nextUse[frame], nextUse[victim]) {
			victim = frame
		}
	}

	return victim
}

func farther(a, b int) bool {
	const never = -1

	switch {
	case b == never:
		return false
	case a == never:
		return true
	default:
		return a > b
	}
}

// Visit does nothing. The optimal policy only looks forward.
func (e *OptimalVictimFinder) Visit(_ int) {}

// Fill does nothing. The optimal policy only looks forward.
func (e *OptimalVictimFinder) Fill(_ int) {}
