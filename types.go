package sprattus

import (
	"encoding/json"
	"net"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// WireType is the Postgres scalar category a field's value is encoded as
// on the wire. The rendering doubles as the cast suffix in typed
// placeholder lists, e.g. "$1::INT".
type WireType string

const (
	WireBool      WireType = "BOOL"
	WireChar      WireType = "CHAR"
	WireSmallInt  WireType = "SMALLINT"
	WireInt       WireType = "INT"
	WireOID       WireType = "OID"
	WireBigInt    WireType = "BIGINT"
	WireReal      WireType = "REAL"
	WireDouble    WireType = "DOUBLE PRECISION"
	WireVarchar   WireType = "VARCHAR"
	WireBytea     WireType = "BYTEA"
	WireDate      WireType = "DATE"
	WireTime      WireType = "TIME"
	WireTimestamp WireType = "TIMESTAMP"
	WireUUID      WireType = "UUID"
	WireJSON      WireType = "JSON"
	WireMacAddr   WireType = "MACADDR"
)

var (
	timeType       = reflect.TypeOf(time.Time{})
	dateType       = reflect.TypeOf(pgtype.Date{})
	timeOfDayType  = reflect.TypeOf(pgtype.Time{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
	hwAddrType     = reflect.TypeOf(net.HardwareAddr(nil))
	byteSliceType  = reflect.TypeOf([]byte(nil))
)

// namedWireTypes maps exact named Go types to their wire type. Checked
// before the kind switch so time.Time, json.RawMessage and friends don't
// fall through to the generic struct/slice handling.
var namedWireTypes = map[reflect.Type]WireType{
	timeType:       WireTimestamp,
	dateType:       WireDate,
	timeOfDayType:  WireTime,
	uuidType:       WireUUID,
	rawMessageType: WireJSON,
	hwAddrType:     WireMacAddr,
	byteSliceType:  WireBytea,
}

// wireTypeOf resolves the wire type for a field's Go type. The mapping is
// total over the supported set; ok is false for everything else.
func wireTypeOf(t reflect.Type) (wt WireType, ok bool) {
	if wt, ok := namedWireTypes[t]; ok {
		return wt, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return WireBool, true
	case reflect.Int8:
		return WireChar, true
	case reflect.Int16:
		return WireSmallInt, true
	case reflect.Int32, reflect.Int:
		return WireInt, true
	case reflect.Uint32:
		return WireOID, true
	case reflect.Int64:
		return WireBigInt, true
	case reflect.Float32:
		return WireReal, true
	case reflect.Float64:
		return WireDouble, true
	case reflect.String:
		return WireVarchar, true
	}
	return "", false
}
