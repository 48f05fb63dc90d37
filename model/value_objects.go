// Package model provides value objects for API parameter validation.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemID represents an item ID taken from a request path.
type ItemID int64

// ParseItemID parses the leading base-10 integer of s.
// Leading whitespace and a sign are accepted and anything after the digits
// is ignored, so "12abc" parses as 12. A string without leading digits or
// one that overflows int64 is rejected with ErrInvalidItemID.
func ParseItemID(s string) (ItemID, error) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, ErrInvalidItemID
	}

	id, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, ErrInvalidItemID
	}
	return ItemID(id), nil
}

// Int64 returns the ID as int64.
func (id ItemID) Int64() int64 {
	return int64(id)
}

// String returns the decimal representation of the ID.
func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Amount represents a monetary value stored with exact decimal precision.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// ParseAmount parses a decimal string such as "1250.75".
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{Decimal: decimal.Zero}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{Decimal: d}, nil
}

// MarshalJSON encodes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
// null and the empty string decode to zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
	}

	parsed, err := ParseAmount(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// InvoiceNo represents an invoice number sent either as a string or a number.
type InvoiceNo string

// UnmarshalJSON accepts a JSON string or number. null decodes to "".
func (n *InvoiceNo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid invoice number: %w", err)
		}
		*n = InvoiceNo(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("invalid invoice number: %w", err)
		}
		*n = InvoiceNo(num.String())
	default:
		return fmt.Errorf("invalid invoice number: must be a string or a number")
	}
	return nil
}

// String returns the invoice number.
func (n InvoiceNo) String() string {
	return string(n)
}

// isTruthy reports whether a raw JSON value would count as true in a boolean
// context: null, false, "" and numeric zero are falsy, everything else is truthy.
func isTruthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}

	switch v[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		return len(v) > 2
	default:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f != 0
	}
}
