package core

// Period is the aggregation scope for a ledger query. The zero value means
// the whole ledger; a month value of 1..12 selects entries whose date falls
// in that month of any year, with the running balance partitioned per
// (year, month).
type Period struct {
	Month int
}

// WholeLedger reports whether the period spans the entire ledger.
func (p Period) WholeLedger() bool {
	return p.Month == 0
}

func (p Period) Validate() error {
	if p.Month == 0 {
		return nil
	}
	if !ValidMonth(p.Month) {
		return ErrInvalidMonth
	}
	return nil
}
