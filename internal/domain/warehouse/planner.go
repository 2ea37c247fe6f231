package warehouse

// Demand is the number of units of one purchase order item still to be placed
type Demand struct {
	ItemID   int64
	Quantity int
}

// BinSlot is the planner's view of a candidate bin
type BinSlot struct {
	BinID    int64
	Capacity int
	Used     int
}

// Free returns the uncommitted capacity of the slot
func (s BinSlot) Free() int {
	if s.Used >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Used
}

// Placement is a single planned (item, bin, quantity) assignment
type Placement struct {
	ItemID   int64
	BinID    int64
	Quantity int
	// BinStatus is the status of the bin right after this placement
	BinStatus BinStatus
}

// FillPlan is the outcome of a successful greedy fill
type FillPlan struct {
	Placements []Placement
	// Bins holds the final usage of every candidate bin, in input order
	Bins []BinSlot
}

// PlacedFor returns the units planned for an item
func (p *FillPlan) PlacedFor(itemID int64) int {
	total := 0
	for _, pl := range p.Placements {
		if pl.ItemID == itemID {
			total += pl.Quantity
		}
	}
	return total
}

// TouchedBins returns the slots whose usage changed, in fill order
func (p *FillPlan) TouchedBins(before []BinSlot) []BinSlot {
	touched := make([]BinSlot, 0, len(p.Bins))
	for idx, slot := range p.Bins {
		if idx < len(before) && before[idx].Used == slot.Used {
			continue
		}
		touched = append(touched, slot)
	}
	return touched
}

// PlanFill places demands into bins greedily, in the order given.
//
// The cursor stays on a bin until it is full, so a bin left partial by one item
// keeps receiving the next item's units. If any units are left once the cursor
// runs past the last bin, no plan is returned and the error reports the total
// unplaced quantity.
func PlanFill(demands []Demand, bins []BinSlot) (*FillPlan, error) {
	slots := make([]BinSlot, len(bins))
	copy(slots, bins)

	plan := &FillPlan{Placements: make([]Placement, 0, len(demands))}
	cursor := 0
	unplaced := 0

	for _, d := range demands {
		remaining := d.Quantity
		for remaining > 0 && cursor < len(slots) {
			slot := &slots[cursor]
			free := slot.Free()
			if free == 0 {
				cursor++
				continue
			}

			take := min(remaining, free)
			slot.Used += take
			remaining -= take

			status := DeriveBinStatus(slot.Used, slot.Capacity)
			plan.Placements = append(plan.Placements, Placement{
				ItemID:    d.ItemID,
				BinID:     slot.BinID,
				Quantity:  take,
				BinStatus: status,
			})

			if status == BinStatusFull {
				cursor++
			}
		}
		if remaining > 0 {
			unplaced += remaining
		}
	}

	if unplaced > 0 {
		reason := ReasonInsufficientCapacity
		if len(bins) == 0 {
			reason = ReasonNoBinsAvailable
		}
		return nil, NewAllocationShortfallError(unplaced, reason)
	}

	plan.Bins = slots
	return plan, nil
}
