package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentStatus tracks whether an order's payment stands
type PaymentStatus int

const (
	PaymentStatusUnpaid PaymentStatus = 0
	PaymentStatusPaid   PaymentStatus = 1
	PaymentStatusVoided PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusUnpaid:
		return "unpaid"
	case PaymentStatusPaid:
		return "paid"
	case PaymentStatusVoided:
		return "voided"
	}
	return "unknown"
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "unpaid":
		*s = PaymentStatusUnpaid
	case "paid":
		*s = PaymentStatusPaid
	case "voided":
		*s = PaymentStatusVoided
	default:
		return fmt.Errorf("unknown payment status %q", str)
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PaymentStatusUnpaid
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	return nil
}
