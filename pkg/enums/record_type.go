package enums

import "fmt"

// RecordType names the CRM object a record id belongs to. Used for form
// submission and navigation targets.
type RecordType string

const (
	RecordTypeItem     RecordType = "Item"
	RecordTypePurchase RecordType = "Purchase"
	RecordTypeAccount  RecordType = "Account"
)

var validRecordTypes = []RecordType{
	RecordTypeItem,
	RecordTypePurchase,
	RecordTypeAccount,
}

// String implements fmt.Stringer.
func (r RecordType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecordType.
func (r RecordType) IsValid() bool {
	for _, candidate := range validRecordTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecordType converts raw input into a RecordType.
func ParseRecordType(value string) (RecordType, error) {
	for _, candidate := range validRecordTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid record type %q", value)
}
