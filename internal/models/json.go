package models

import (
	"gorm.io/datatypes"
)

// IDList is a list of entity ids stored as a JSON column. The datatypes
// slice handles the per-driver column type mapping, including MSSQL which
// has no native 'json' data type (NVARCHAR(MAX) there).
type IDList = datatypes.JSONSlice[string]
