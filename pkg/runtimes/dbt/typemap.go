package dbt

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Semantic field types of a dataitem schema.
const (
	TypeBoolean  = "boolean"
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeNumber   = "number"
	TypeDate     = "date"
	TypeTime     = "time"
	TypeDatetime = "datetime"
	TypeObject   = "object"
	TypeAny      = "any"
)

var typesByOID = map[uint32]string{
	16:   TypeBoolean,  // bool
	18:   TypeString,   // char
	20:   TypeInteger,  // int8
	21:   TypeInteger,  // int2
	23:   TypeInteger,  // int4
	25:   TypeString,   // text
	114:  TypeObject,   // json
	142:  TypeString,   // xml
	650:  TypeString,   // cidr
	700:  TypeNumber,   // float4
	701:  TypeNumber,   // float8
	774:  TypeString,   // macaddr8
	829:  TypeString,   // macaddr
	869:  TypeString,   // inet
	1043: TypeString,   // varchar
	1082: TypeDate,     // date
	1083: TypeTime,     // time
	1114: TypeDatetime, // timestamp
	1184: TypeDatetime, // timestamptz
	1266: TypeTime,     // timetz
	1700: TypeNumber,   // numeric
	2950: TypeString,   // uuid
	3802: TypeObject,   // jsonb
}

// MapType returns the semantic type of a Postgres type OID. Unknown codes
// map to TypeAny.
func MapType(oid uint32) string {
	if t, ok := typesByOID[oid]; ok {
		return t
	}
	return TypeAny
}

// pgTypes is only read after initialization.
var pgTypes = pgtype.NewMap()

// ResolveOID converts a driver-reported type name ("INT4", "varchar") or a
// decimal OID string into an OID. Unknown names resolve to 0.
func ResolveOID(typeName string) uint32 {
	if oid, err := strconv.ParseUint(typeName, 10, 32); err == nil {
		return uint32(oid)
	}
	if t, ok := pgTypes.TypeForName(strings.ToLower(typeName)); ok {
		return t.OID
	}
	return 0
}
