package parser

import "sort"

// The tables below map each built-in to the shortest abbreviation the
// runtime accepts for it, 0 when it must be spelled out.

// recordFunctions take a record buffer as their operand, with or without
// parentheses: AVAILABLE customer, LOCKED(customer).
var recordFunctions = map[string]int{
	"AVAILABLE": 5, "AMBIGUOUS": 5, "LOCKED": 0, "CURRENT-CHANGED": 0,
	"RECID": 0, "ROWID": 0, "NEW": 0, "ROW-STATE": 0,
	"REJECTED": 0, "DATA-SOURCE-MODIFIED": 0, "BUFFER-TENANT-ID": 0,
	"BUFFER-TENANT-NAME": 0, "BUFFER-GROUP-ID": 0, "BUFFER-GROUP-NAME": 0, "BUFFER-PARTITION-ID": 0,
}

// noArgBuiltins are functions called without parentheses.
var noArgBuiltins = map[string]int{
	"TODAY": 0, "NOW": 0, "TIME": 0, "ETIME": 0,
	"MTIME": 0, "RETURN-VALUE": 0, "PROGRAM-NAME": 0, "PROPATH": 0,
	"OPSYS": 0, "PROVERSION": 0, "DBNAME": 0, "USERID": 0,
	"TRANSACTION": 5, "FRAME-FIELD": 0, "FRAME-NAME": 0, "FRAME-VALUE": 9,
	"FRAME-INDEX": 0, "FRAME-DB": 0, "FRAME-FILE": 0, "LASTKEY": 0,
	"LAST-EVENT": 0, "KEYFUNCTION": 7, "GENERATE-UUID": 0, "GUID": 0,
	"TIMEZONE": 0, "IS-ATTR-SPACE": 0, "MESSAGE-LINES": 0, "NUM-DBS": 0,
	"NUM-ALIASES": 0, "TERMINAL": 0, "CURRENT-LANGUAGE": 12, "LINE-COUNTER": 10,
	"PAGE-NUMBER": 8, "PAGE-SIZE": 0, "OS-ERROR": 0, "RETRY": 0,
	"PROMSGS": 0, "GATEWAYS": 0, "OS-DRIVES": 0, "SCREEN-LINES": 0,
	"GET-CODEPAGES": 12, "GET-COLLATIONS": 0, "GENERATE-RANDOM-KEY": 0, "GENERATE-PBE-SALT": 0,
	"AUDIT-ENABLED": 0,
}

// systemHandles are the built-in handles of the runtime.
var systemHandles = map[string]int{
	"SESSION": 0, "SELF": 0, "ERROR-STATUS": 0, "THIS-PROCEDURE": 0,
	"TARGET-PROCEDURE": 0, "SOURCE-PROCEDURE": 0, "LAST-EVENT": 0, "FOCUS": 0,
	"ACTIVE-WINDOW": 0, "CURRENT-WINDOW": 0, "DEFAULT-WINDOW": 0, "COMPILER": 0,
	"FILE-INFORMATION": 9, "LOG-MANAGER": 0, "SECURITY-POLICY": 0, "CODEBASE-LOCATOR": 0,
	"CLIPBOARD": 0, "COLOR-TABLE": 0, "FONT-TABLE": 0, "DEBUGGER": 0,
	"RCODE-INFORMATION": 10, "WEB-CONTEXT": 0, "AUDIT-CONTROL": 0, "AUDIT-POLICY": 0,
	"PROFILER": 0, "SUPER-PROCEDURES": 0, "ACTIVE-FORM": 0, "LAST-OBJECT": 0,
	"DSLOG-MANAGER": 0, "CURRENT-REQUEST-INFO": 0, "CURRENT-RESPONSE-INFO": 0, "SOURCE-PROCEDURE-HANDLE": 0,
}

// builtinFunctions are called with an argument list.
var builtinFunctions = map[string]int{
	"ABSOLUTE": 3, "ADD-INTERVAL": 0, "ALIAS": 0,
	"ASC": 0, "AUDIT-ENABLED": 0, "BASE64-DECODE": 0, "BASE64-ENCODE": 0,
	"BOX": 0, "BUFFER-TENANT-NAME": 0, "CAN-DO": 0, "CAN-FIND": 0,
	"CAN-QUERY": 0, "CAN-SET": 0, "CAPS": 0, "CHARACTER": 4,
	"CHR": 0, "CODEPAGE-CONVERT": 0, "COMPARE": 0, "CONNECTED": 0,
	"COUNT-OF": 0, "CURRENT-RESULT-ROW": 0, "CURRENT-VALUE": 0, "DATE": 0,
	"DATETIME": 0, "DATETIME-TZ": 0, "DAY": 0, "DBCODEPAGE": 0,
	"DBCOLLATION": 0, "DBPARAM": 0, "DBRESTRICTIONS": 6, "DBTASKID": 0,
	"DBTYPE": 0, "DBVERSION": 0, "DECIMAL": 3, "DECRYPT": 0,
	"DYNAMIC-CAST": 0, "DYNAMIC-ENUM": 0, "DYNAMIC-FUNCTION": 12, "DYNAMIC-INVOKE": 0,
	"DYNAMIC-NEW": 0, "DYNAMIC-PROPERTY": 0, "ENCODE": 0, "ENCRYPT": 0,
	"ENTRY": 0, "ETIME": 0, "EXP": 0, "EXTENT": 0,
	"FILL": 0, "FIRST": 0, "FIRST-OF": 0, "FRAME-COL": 0,
	"FRAME-DOWN": 0, "FRAME-LINE": 0, "FRAME-ROW": 0, "GENERATE-PBE-KEY": 0,
	"GET-BITS": 0, "GET-BYTE": 0, "GET-BYTE-ORDER": 0, "GET-BYTES": 0,
	"GET-CLASS": 0, "GET-CODEPAGES": 12, "GET-DB-CLIENT": 0, "GET-DOUBLE": 0,
	"GET-EFFECTIVE-TENANT-ID": 0, "GET-EFFECTIVE-TENANT-NAME": 0, "GET-FLOAT": 0, "GET-INT64": 0,
	"GET-LONG": 0, "GET-POINTER-VALUE": 0, "GET-SHORT": 0, "GET-SIZE": 0,
	"GET-STRING": 0, "GET-UNSIGNED-LONG": 0, "GET-UNSIGNED-SHORT": 0, "HANDLE": 0,
	"HASH-CODE": 0, "HEX-DECODE": 0, "HEX-ENCODE": 0, "INDEX": 0,
	"INT64": 0, "INTEGER": 3, "INTERVAL": 0, "IS-CODEPAGE-FIXED": 0,
	"IS-COLUMN-CODEPAGE": 0, "IS-LEAD-BYTE": 0, "ISO-DATE": 0, "KBLABEL": 0,
	"KEYCODE": 0, "KEYFUNCTION": 7, "KEYLABEL": 0, "LAST": 0,
	"LAST-OF": 0, "LC": 0, "LDBNAME": 0, "LEFT-TRIM": 0,
	"LENGTH": 0, "LIBRARY": 0, "LIST-EVENTS": 0, "LIST-QUERY-ATTRS": 0,
	"LIST-SET-ATTRS": 0, "LIST-WIDGETS": 0, "LOG": 0, "LOGICAL": 0,
	"LOOKUP": 0, "MAXIMUM": 3, "MD5-DIGEST": 0, "MEMBER": 0,
	"MESSAGE-DIGEST": 0, "MINIMUM": 3, "MONTH": 0, "MTIME": 0,
	"NEXT-VALUE": 0, "NORMALIZE": 0, "NUM-ENTRIES": 0, "NUM-RESULTS": 0,
	"OS-GETENV": 0, "OVERLAY": 0, "PDBNAME": 0, "PROGRAM-NAME": 0,
	"QUERY-OFF-END": 0, "QUOTER": 0, "R-INDEX": 0, "RANDOM": 0,
	"RAW": 0, "RECID": 0, "REPLACE": 0, "RGB-VALUE": 0,
	"RIGHT-TRIM": 0, "ROUND": 0, "ROWID": 0, "SDBNAME": 0,
	"SEARCH": 0, "SEEK": 0, "SET-DB-CLIENT": 0, "SET-SIZE": 0,
	"SETUSERID": 0, "SHA1-DIGEST": 0, "SQRT": 0, "SSL-SERVER-NAME": 0,
	"STRING": 0, "STRING-VALUE": 0, "SUBSTITUTE": 5, "SUBSTRING": 6,
	"SUPER": 0, "TENANT-ID": 0, "TENANT-NAME": 0, "TENANT-NAME-TO-ID": 0,
	"TIME": 0, "TO-ROWID": 0, "TRIM": 0, "TRUNCATE": 5,
	"TYPE-OF": 0, "UNBOX": 0, "USERID": 0, "VALID-EVENT": 0,
	"VALID-HANDLE": 0, "VALID-OBJECT": 0, "VALUE": 0, "WEEKDAY": 0,
	"WIDGET-HANDLE": 0, "YEAR": 0,
}

var (
	recordFunctionNames = spellings(recordFunctions)
	noArgBuiltinNames   = spellings(noArgBuiltins)
	systemHandleNames   = spellings(systemHandles)
	functionNames       = spellings(builtinFunctions)
)

// spellings maps every accepted spelling of the names in table, full name
// and abbreviations, to the full name. A full name always wins over an
// abbreviation of another.
func spellings(table map[string]int) map[string]string {
	names := make([]string, 0, len(table))
	out := make(map[string]string)
	for name := range table {
		names = append(names, name)
		out[name] = name
	}
	sort.Strings(names)
	for _, name := range names {
		for n := table[name]; n > 0 && n < len(name); n++ {
			if _, taken := out[name[:n]]; !taken {
				out[name[:n]] = name
			}
		}
	}
	return out
}

// IsRecordFunction reports whether name is a function taking a record
// buffer operand. name must be in upper case.
func IsRecordFunction(name string) bool {
	_, ok := recordFunctionNames[name]
	return ok
}

// IsSystemHandle reports whether name is a built-in system handle.
func IsSystemHandle(name string) bool {
	_, ok := systemHandleNames[name]
	return ok
}

func isNoArgBuiltin(name string) bool {
	_, ok := noArgBuiltinNames[name]
	return ok
}

// IsBuiltinName reports whether name is a built-in function, no-argument
// function or system handle. name must be in upper case.
func IsBuiltinName(name string) bool {
	_, ok := BuiltinName(name)
	return ok
}

// BuiltinName returns the full name of the built-in spelled name, which
// may be abbreviated: INT is INTEGER, SUBSTR is SUBSTRING.
func BuiltinName(name string) (string, bool) {
	for _, names := range []map[string]string{functionNames, recordFunctionNames, noArgBuiltinNames, systemHandleNames} {
		if full, ok := names[name]; ok {
			return full, true
		}
	}
	return "", false
}
