package enum

// CashFlowType is the direction of a manual drawer movement
type CashFlowType string

const (
	CashFlowIn  CashFlowType = "cash_in"
	CashFlowOut CashFlowType = "cash_out"
)

func (t CashFlowType) IsValid() bool {
	return t == CashFlowIn || t == CashFlowOut
}

// Label is the human readable form used in audit lines
func (t CashFlowType) Label() string {
	if t == CashFlowOut {
		return "cash out"
	}
	return "cash in"
}
