package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cinderwatch/wildfire-detect-service/internal/config"
	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Unknown values fall back to info-level JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ScoreLogObserver logs every per-reading scoring breakdown at debug level.
// Wire it into the detector when diagnosing why a batch did or did not alert.
type ScoreLogObserver struct {
	logger *slog.Logger
}

// NewScoreLogObserver returns an observer writing to logger.
func NewScoreLogObserver(logger *slog.Logger) *ScoreLogObserver {
	return &ScoreLogObserver{logger: logger}
}

// ObserveScore implements domain.ScoreObserver.
func (o *ScoreLogObserver) ObserveScore(s domain.ReadingScore) {
	o.logger.Debug("scored reading",
		"index", s.Index,
		"timestamp", s.Reading.Timestamp,
		"temp_z", s.TempZ,
		"smoke_z", s.SmokeZ,
		"temp_severity", s.TempSeverity,
		"smoke_severity", s.SmokeSeverity,
		"wind_score", s.WindScore,
		"risk", s.Risk,
		"emitted", s.Emitted,
	)
}
