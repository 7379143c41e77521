package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// JSON is a free-form document column: jsonb on postgres, json on mysql.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan JSON: unsupported type")
	}
	return json.Unmarshal(data, j)
}

func (JSON) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "JSON"
	}
	return "JSONB"
}

// Tags is a text[] column on postgres and a JSON array on mysql.
type Tags []string

func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "JSON"
	}
	return "TEXT[]"
}

func (t Tags) GormValue(_ context.Context, db *gorm.DB) clause.Expr {
	if db.Dialector.Name() == "mysql" {
		data, _ := json.Marshal([]string(t))
		return clause.Expr{SQL: "?", Vars: []interface{}{string(data)}}
	}
	return clause.Expr{SQL: "?", Vars: []interface{}{pq.StringArray(t)}}
}

// Scan accepts both the postgres array literal and a JSON array.
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return errors.New("failed to scan Tags: unsupported type")
	}

	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return err
		}
		*t = out
		return nil
	}

	var arr pq.StringArray
	if err := arr.Scan(raw); err != nil {
		return err
	}
	*t = Tags(arr)
	return nil
}
