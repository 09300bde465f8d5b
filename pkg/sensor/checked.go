package sensor

import "log/slog"

// ReadRawChecked reads s and treats FaultReading as a sensor failure: the
// fault is logged and -1 is returned in place of a sample.
func ReadRawChecked(s Sensor) float64 {
	raw := s.ReadRaw()
	if raw == FaultReading {
		slog.Error("sensor read error")
		return -1
	}
	return float64(raw)
}
