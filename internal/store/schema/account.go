package schema

import (
	"time"

	"github.com/artfolio/marketplace-ledger/internal/domain"
)

// Account represents the accounts table - the value ledger backing
// purchase settlement. Balances are non-negative; the settlement
// transaction rejects debits that would overdraw.
type Account struct {
	// Address is the account holder's address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Balance is the spendable balance in the smallest value unit
	Balance domain.Amount `gorm:"column:balance;not null;type:numeric(78,0)"`
	// CreatedAt is the timestamp the account was first funded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last balance change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
