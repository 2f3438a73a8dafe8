package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func jsonbValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dest any, value any) error {
	if value == nil {
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("jsonb: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, dest)
}
