package warehouse

import "fmt"

// DemandMode selects how automatic allocation computes the units still owed for an item
type DemandMode string

const (
	// DemandModeOutstanding allocates ordered minus already received units
	DemandModeOutstanding DemandMode = "outstanding"
	// DemandModeOrdered treats the full ordered quantity as remaining demand.
	// Orders with any received quantity are rejected in this mode.
	DemandModeOrdered DemandMode = "ordered"
)

// IsValid checks if the mode is a known DemandMode
func (m DemandMode) IsValid() bool {
	return m == DemandModeOutstanding || m == DemandModeOrdered
}

// ParseDemandMode converts a config string to a DemandMode, defaulting to outstanding
func ParseDemandMode(s string) (DemandMode, error) {
	if s == "" {
		return DemandModeOutstanding, nil
	}
	m := DemandMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown demand mode %q", s)
	}
	return m, nil
}

// BuildDemands computes the automatic-mode demand list for an order, in item order.
// Items with nothing outstanding are skipped.
func BuildDemands(po *PurchaseOrder, mode DemandMode) ([]Demand, error) {
	demands := make([]Demand, 0, len(po.Items))
	for idx := range po.Items {
		item := &po.Items[idx]
		var qty int
		switch mode {
		case DemandModeOrdered:
			if item.QuantityReceived > 0 {
				return nil, NewValidationError(fmt.Sprintf(
					"Item %d already has %d units received; automatic allocation in ordered mode would double-allocate",
					item.ID, item.QuantityReceived))
			}
			qty = item.QuantityOrdered
		default:
			qty = item.RemainingQuantity()
		}
		if qty <= 0 {
			continue
		}
		demands = append(demands, Demand{ItemID: item.ID, Quantity: qty})
	}
	return demands, nil
}
