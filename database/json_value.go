package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type AnonymousJson map[string]interface{}

// Value implements driver.Valuer
func (a *AnonymousJson) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *AnonymousJson) Scan(value interface{}) error {
	if b, ok := value.([]byte); !ok {
		return errors.New("failed to assert jsonb is bytes")
	} else {
		return json.Unmarshal(b, &a)
	}
}
