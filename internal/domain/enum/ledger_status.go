package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LedgerStatus is the state of a daily cash ledger
type LedgerStatus int

const (
	LedgerStatusOpen   LedgerStatus = 0
	LedgerStatusClosed LedgerStatus = 1
)

func (s LedgerStatus) String() string {
	if s == LedgerStatusClosed {
		return "closed"
	}
	return "open"
}

func (s LedgerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *LedgerStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "open":
		*s = LedgerStatusOpen
	case "closed":
		*s = LedgerStatusClosed
	default:
		return fmt.Errorf("unknown ledger status %q", str)
	}
	return nil
}

func (s LedgerStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *LedgerStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = LedgerStatusOpen
	case int64:
		*s = LedgerStatus(v)
	case int:
		*s = LedgerStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into LedgerStatus", value)
	}
	return nil
}
