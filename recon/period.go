package recon

// =============================================================================
// PERIOD - A (year, month) reconciliation unit
// =============================================================================

// Period identifies one monthly reconciliation window.
type Period struct {
	Year  int
	Month int // 1-12
}

// Valid reports whether the month is in range. Years are unconstrained.
func (p Period) Valid() bool { return p.Month >= 1 && p.Month <= 12 }

// Previous returns the preceding period, wrapping December of the
// prior year when the month is January. Used only to look up the prior
// ledger for previous-balance seeding - no back-reference is stored.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the following period, wrapping January of the next year.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p precedes other chronologically.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}
