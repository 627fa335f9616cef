package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/rule-verifier/wireformat"
)

// appendAttr flattens attr into dst. Group members become dotted keys and
// empty attributes are dropped, matching slog's built-in handlers.
func appendAttr(dst []wireformat.LogAttrWire, prefix string, attr slog.Attr) []wireformat.LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}

	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		if len(members) == 0 {
			return dst
		}
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, member := range members {
			dst = appendAttr(dst, groupPrefix, member)
		}
		return dst
	}

	wire := toLogAttrWire(attr)
	wire.Key = prefix + wire.Key
	return append(dst, wire)
}

// toLogAttrWire converts a resolved, non-group slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) wireformat.LogAttrWire {
	wire := wireformat.LogAttrWire{Key: attr.Key}
	v := attr.Value

	switch v.Kind() {
	case slog.KindString:
		wire.Type, wire.Value = "string", v.String()
	case slog.KindInt64:
		wire.Type, wire.Value = "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		wire.Type, wire.Value = "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		wire.Type, wire.Value = "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		wire.Type, wire.Value = "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type, wire.Value = "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type, wire.Value = "duration", v.Duration().String()
	default:
		wire.Type, wire.Value = anyValue(v.Any())
	}
	return wire
}

func anyValue(v any) (kind, value string) {
	switch x := v.(type) {
	case nil:
		return "any", "<nil>"
	case error:
		return "error", x.Error()
	case []byte:
		return "bytes", fmt.Sprintf("%x", x)
	}
	if data, err := json.Marshal(v); err == nil {
		return "json", string(data)
	}
	return "any", fmt.Sprintf("%v", v)
}
