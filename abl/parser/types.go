package parser

import "strings"

// dataTypes maps every accepted spelling of a primitive data type,
// abbreviations included, to its canonical name.
var dataTypes = map[string]string{}

func init() {
	canonical := []struct {
		name    string
		minAbbr int
	}{
		{"CHARACTER", 4},
		{"INTEGER", 3},
		{"INT64", 0},
		{"DECIMAL", 3},
		{"LOGICAL", 3},
		{"DATE", 0},
		{"DATETIME", 0},
		{"DATETIME-TZ", 0},
		{"HANDLE", 0},
		{"WIDGET-HANDLE", 0},
		{"COM-HANDLE", 0},
		{"ROWID", 0},
		{"RECID", 0},
		{"RAW", 0},
		{"MEMPTR", 0},
		{"LONGCHAR", 0},
		{"BLOB", 0},
		{"CLOB", 0},
	}
	for _, dt := range canonical {
		dataTypes[dt.name] = dt.name
		if dt.minAbbr == 0 {
			continue
		}
		for n := dt.minAbbr; n < len(dt.name); n++ {
			if _, taken := dataTypes[dt.name[:n]]; !taken {
				dataTypes[dt.name[:n]] = dt.name
			}
		}
	}
}

// CanonicalDataType returns the canonical name of a primitive data type,
// CHARACTER for "char", and false when name is not a primitive type. Such a
// name is then a class type.
func CanonicalDataType(name string) (string, bool) {
	dt, ok := dataTypes[strings.ToUpper(name)]
	return dt, ok
}
