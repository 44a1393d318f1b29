package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("models: cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// All lists every persisted model, in dependency order, for migrations and
// test databases.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Customer{},
		&User{},
		&Order{},
		&OrderItem{},
		&OrderStatusChange{},
		&QuoteRequest{},
		&Campaign{},
		&CampaignProduct{},
		&TrackingEvent{},
	}
}
