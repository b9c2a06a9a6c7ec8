package domain

// TotalPrice returns the amount a buyer must attach to purchase a listing:
// price plus the marketplace fee, computed with integer floor division as
// price + price*feePercent/100.
func TotalPrice(price Amount, feePercent uint64) Amount {
	return price.Add(price.MulUint64(feePercent).DivUint64(100))
}
