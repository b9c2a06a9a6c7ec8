package schema

import "time"

// OperatorApproval represents the operator_approvals table - a blanket
// grant allowing the operator to transfer any of the owner's current and
// future assets.
type OperatorApproval struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Owner is the granting address
	Owner string `gorm:"column:owner;not null;type:text;uniqueIndex:idx_operator_approvals_owner_operator,priority:1"`
	// Operator is the address granted transfer rights
	Operator string `gorm:"column:operator;not null;type:text;uniqueIndex:idx_operator_approvals_owner_operator,priority:2"`
	// Approved is the current state of the grant
	Approved bool `gorm:"column:approved;not null;default:false"`
	// UpdatedAt is the timestamp of the last grant or revocation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OperatorApproval model
func (OperatorApproval) TableName() string {
	return "operator_approvals"
}
