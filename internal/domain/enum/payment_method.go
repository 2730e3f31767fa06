package enum

// PaymentMethod is the tender used to settle an order
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodGcash      PaymentMethod = "gcash"
	PaymentMethodSplit      PaymentMethod = "split"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
)

// PaymentMethods lists every accepted method in display order
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodGcash,
	PaymentMethodSplit,
	PaymentMethodDebitCard,
	PaymentMethodCreditCard,
}

func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether m is one of the accepted methods
func (m PaymentMethod) IsValid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// IsCard reports whether the method settles through a card terminal
func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodDebitCard || m == PaymentMethodCreditCard
}
