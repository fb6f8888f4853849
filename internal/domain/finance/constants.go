package finance

const (
	TypeVoucherIncome   = "voucher_income"
	TypeBonus           = "bonus"
	TypeDeductionLoan   = "deduction_loan"
	TypeDeductionSaving = "deduction_saving"
	TypeDeductionHealth = "deduction_health"
	TypeDeductionStore  = "deduction_store"
	TypeAdjustment      = "adjustment"
)

// IncomeTypes and DeductionTypes partition the closed transaction-type set.
// The sign of a transaction is implied by its type; stored amounts are
// always positive.
var IncomeTypes = map[string]struct{}{
	TypeVoucherIncome: {},
	TypeBonus:         {},
}

var DeductionTypes = map[string]struct{}{
	TypeDeductionLoan:   {},
	TypeDeductionSaving: {},
	TypeDeductionHealth: {},
	TypeDeductionStore:  {},
	TypeAdjustment:      {},
}

func IsIncome(txType string) bool {
	_, ok := IncomeTypes[txType]
	return ok
}

func IsDeduction(txType string) bool {
	_, ok := DeductionTypes[txType]
	return ok
}

func ValidType(txType string) bool {
	return IsIncome(txType) || IsDeduction(txType)
}

var Types = []string{
	TypeVoucherIncome,
	TypeBonus,
	TypeDeductionLoan,
	TypeDeductionSaving,
	TypeDeductionHealth,
	TypeDeductionStore,
	TypeAdjustment,
}
