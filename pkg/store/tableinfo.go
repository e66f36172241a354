package store

import (
	"regexp"
	"time"
)

// TableType identifies a table's shape, fixed at creation.
type TableType string

// Supported table types.
const (
	TypeKV  TableType = "kv"
	TypeKKV TableType = "kkv"
)

// MetaTableName is the reserved collection holding TableInfo records inside
// the registry's metadata file. User tables may not take this name; its
// leading underscore already fails the name syntax rule.
const MetaTableName = "_table_info"

// TableInfo is the registry's metadata record, one per table.
type TableInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      TableType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// tableNameRE is the sole persisted-name contract: a leading letter followed
// by letters, digits, or underscores.
var tableNameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidTableName reports whether name is acceptable for a user table.
func ValidTableName(name string) bool {
	return name != MetaTableName && tableNameRE.MatchString(name)
}
