package pricing

// Marketplace weights for the blended estimate.
const (
	WeightEbay  = 0.6
	WeightYahoo = 0.4
)

// Combine blends the two marketplace quotes into one estimate. Both present:
// weighted average rounded to cents. Exactly one present: that value
// unchanged. Neither: nil.
func Combine(ebay, yahoo *float64) *float64 {
	switch {
	case ebay != nil && yahoo != nil:
		v := round2(*ebay*WeightEbay + *yahoo*WeightYahoo)
		return &v
	case ebay != nil:
		v := *ebay
		return &v
	case yahoo != nil:
		v := *yahoo
		return &v
	default:
		return nil
	}
}
