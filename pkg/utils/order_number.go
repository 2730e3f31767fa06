package utils

import (
	"fmt"
)

// FormatOrderNumber renders a sequence value as PREFIX-000123. Values wider
// than six digits are printed in full.
func FormatOrderNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = "ORD"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
