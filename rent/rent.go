package rent

// StorageOverheadBytes is charged on top of every account's data length.
const StorageOverheadBytes = 128

// Rent holds the parameters of the minimum balance rule.
type Rent struct {
	// LamportsPerByteYear is the yearly cost of one stored byte.
	LamportsPerByteYear uint64
	// ExemptionYears is how many years of rent a balance must cover to be
	// exempt.
	ExemptionYears uint64
}

// Default returns the network default parameters.
func Default() Rent {
	return Rent{LamportsPerByteYear: 3480, ExemptionYears: 2}
}

// Free exempts every account.
func Free() Rent { return Rent{} }

// MinimumBalance returns the smallest exempt balance for size data bytes.
func (r Rent) MinimumBalance(size int) uint64 {
	return (StorageOverheadBytes + uint64(size)) * r.LamportsPerByteYear * r.ExemptionYears
}

// IsExempt reports whether balance covers an account of size data bytes.
func (r Rent) IsExempt(balance uint64, size int) bool {
	return balance >= r.MinimumBalance(size)
}
