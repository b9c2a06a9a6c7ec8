package domain

import "errors"

var (
	// ErrInvalidPrice is returned when a listing is created with a zero price
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrNotAuthorized is returned when a transfer is attempted by a caller
	// that is neither the asset owner nor an approved operator
	ErrNotAuthorized = errors.New("caller is not owner nor approved operator")

	// ErrUnknownAsset is returned when an asset id was never minted
	ErrUnknownAsset = errors.New("asset doesn't exist")

	// ErrUnknownListing is returned when a listing id is outside the allocated range
	ErrUnknownListing = errors.New("item doesn't exist")

	// ErrAlreadySold is returned when purchasing a completed listing
	ErrAlreadySold = errors.New("item already sold")

	// ErrInsufficientPayment is returned when the attached value does not
	// cover the listing price plus the marketplace fee
	ErrInsufficientPayment = errors.New("not enough ether to cover item price and market fee")

	// ErrInvalidAmount is returned when a deposit amount is zero
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrUnknownAccount is returned when an account has never been funded
	ErrUnknownAccount = errors.New("account doesn't exist")

	// ErrInsufficientFunds is returned when a buyer's account cannot cover
	// the attached value
	ErrInsufficientFunds = errors.New("insufficient account balance")
)
