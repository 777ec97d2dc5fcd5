// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Engine holds the attendance engine thresholds. Everything comes from the
// environment so deployments can tune them without a rebuild.
type Engine struct {
	// OvertimeToleranceMinutes is how far past the location close time a
	// checkout may land before the record needs overtime approval.
	OvertimeToleranceMinutes int

	// StandardDayHours is the default paid day length when the matched
	// shift does not override it.
	StandardDayHours float64
}

func LoadEngine() Engine {
	return Engine{
		OvertimeToleranceMinutes: envInt("OVERTIME_TOLERANCE_MINUTES", 60),
		StandardDayHours:         envFloat("STANDARD_DAY_HOURS", 8),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
