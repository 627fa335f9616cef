package hostfuncs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/reglet-dev/rule-verifier/wireformat"
)

// HandleLogMessage decodes a guest log record and re-emits it on logger.
// Payloads that are not valid wire records are logged raw.
func HandleLogMessage(ctx context.Context, logger *slog.Logger, payload []byte) {
	if logger == nil {
		logger = slog.Default()
	}

	var msg wireformat.LogMessageWire
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.WarnContext(ctx, "guest log (raw)", "payload", string(payload))
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
		level = slog.LevelInfo
	}

	attrs := make([]slog.Attr, 0, len(msg.Attrs)+1)
	attrs = append(attrs, slog.String("source", "guest"))
	for _, a := range msg.Attrs {
		attrs = append(attrs, slog.String(a.Key, a.Value))
	}
	logger.LogAttrs(ctx, level, msg.Message, attrs...)
}
