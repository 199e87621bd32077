// Package policy models the admin-configurable attendance policy and its
// reconstruction from the flat settings store.
package policy

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Schedule controls which days and hours accept clock events.
type Schedule struct {
	WorkDays             []string `json:"workDays"`
	WorkStartTime        string   `json:"workStartTime"`
	WorkEndTime          string   `json:"workEndTime"`
	LateThresholdMinutes int      `json:"lateThresholdMinutes"`
	AllowLateCheckIn     bool     `json:"allowLateCheckIn"`
}

// Office holds the configured office coordinates. Nil means unset.
type Office struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Location controls geolocation requirements for clock events.
type Location struct {
	Required     bool    `json:"required"`
	UseRadius    bool    `json:"useRadius"`
	Office       Office  `json:"office"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// Network controls the originating-address allow list.
type Network struct {
	IPWhitelistEnabled bool     `json:"ipWhitelistEnabled"`
	IPWhitelist        []string `json:"ipWhitelist"`
}

// Config is the full policy consulted by every admission decision.
type Config struct {
	Schedule Schedule `json:"schedule"`
	Location Location `json:"location"`
	Network  Network  `json:"network"`
}

// Defaults returns the documented default policy.
func Defaults() Config {
	return Config{
		Schedule: Schedule{
			WorkDays:             []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			WorkStartTime:        "08:00",
			WorkEndTime:          "17:00",
			LateThresholdMinutes: 15,
			AllowLateCheckIn:     true,
		},
		Location: Location{
			Required:     false,
			UseRadius:    false,
			RadiusMeters: 100,
		},
		Network: Network{
			IPWhitelistEnabled: false,
			IPWhitelist:        nil,
		},
	}
}

// Resolve reconstructs a Config from flat dot-separated key/value rows.
// Missing keys fall back to defaults; unrecognized keys are ignored.
// Resolve never fails: malformed values degrade to a usable default.
func Resolve(rows map[string]string) Config {
	cfg := Defaults()

	if raw, ok := rows["schedule.workDays"]; ok {
		if days, err := parseStrings(raw); err == nil {
			cfg.Schedule.WorkDays = days
		}
	}
	if raw, ok := rows["schedule.workStartTime"]; ok {
		cfg.Schedule.WorkStartTime = parseString(raw)
	}
	if raw, ok := rows["schedule.workEndTime"]; ok {
		cfg.Schedule.WorkEndTime = parseString(raw)
	}
	if raw, ok := rows["schedule.lateThresholdMinutes"]; ok {
		// A present but malformed threshold degrades to 0, not to the
		// documented default: a misconfigured policy must not silently
		// grant fifteen minutes of grace.
		cfg.Schedule.LateThresholdMinutes = parseInt(raw, 0)
	}
	if raw, ok := rows["schedule.allowLateCheckIn"]; ok {
		cfg.Schedule.AllowLateCheckIn = parseBool(raw, cfg.Schedule.AllowLateCheckIn)
	}

	if raw, ok := rows["location.required"]; ok {
		cfg.Location.Required = parseBool(raw, cfg.Location.Required)
	}
	if raw, ok := rows["location.useRadius"]; ok {
		cfg.Location.UseRadius = parseBool(raw, cfg.Location.UseRadius)
	}
	if raw, ok := rows["location.office.latitude"]; ok {
		if v, err := parseFloat(raw); err == nil {
			cfg.Location.Office.Latitude = &v
		}
	}
	if raw, ok := rows["location.office.longitude"]; ok {
		if v, err := parseFloat(raw); err == nil {
			cfg.Location.Office.Longitude = &v
		}
	}
	if raw, ok := rows["location.radiusMeters"]; ok {
		if v, err := parseFloat(raw); err == nil && v > 0 {
			cfg.Location.RadiusMeters = v
		}
	}

	if raw, ok := rows["network.ipWhitelistEnabled"]; ok {
		cfg.Network.IPWhitelistEnabled = parseBool(raw, cfg.Network.IPWhitelistEnabled)
	}
	if raw, ok := rows["network.ipWhitelist"]; ok {
		if list, err := parseStrings(raw); err == nil {
			cfg.Network.IPWhitelist = list
		}
	}

	return cfg
}

// Flatten converts a Config back into the flat dot-separated rows used by
// the settings store. Values are JSON-encoded verbatim.
func (c Config) Flatten() map[string]string {
	rows := map[string]string{
		"schedule.workDays":             encode(c.Schedule.WorkDays),
		"schedule.workStartTime":        encode(c.Schedule.WorkStartTime),
		"schedule.workEndTime":          encode(c.Schedule.WorkEndTime),
		"schedule.lateThresholdMinutes": encode(c.Schedule.LateThresholdMinutes),
		"schedule.allowLateCheckIn":     encode(c.Schedule.AllowLateCheckIn),
		"location.required":             encode(c.Location.Required),
		"location.useRadius":            encode(c.Location.UseRadius),
		"location.radiusMeters":         encode(c.Location.RadiusMeters),
		"network.ipWhitelistEnabled":    encode(c.Network.IPWhitelistEnabled),
		"network.ipWhitelist":           encode(c.Network.IPWhitelist),
	}
	if c.Location.Office.Latitude != nil {
		rows["location.office.latitude"] = encode(*c.Location.Office.Latitude)
	}
	if c.Location.Office.Longitude != nil {
		rows["location.office.longitude"] = encode(*c.Location.Office.Longitude)
	}
	return rows
}

// Category returns the named section of the config for the by-category
// settings read. The boolean reports whether the category exists.
func (c Config) Category(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "schedule":
		return c.Schedule, true
	case "location":
		return c.Location, true
	case "network":
		return c.Network, true
	}
	return nil, false
}

// OfficeConfigured reports whether both office coordinates are set.
func (c Config) OfficeConfigured() bool {
	return c.Location.Office.Latitude != nil && c.Location.Office.Longitude != nil
}

// IsWorkDay reports whether the given weekday name is a recognized work day.
func (c Config) IsWorkDay(weekday string) bool {
	for _, d := range c.Schedule.WorkDays {
		if strings.EqualFold(d, weekday) {
			return true
		}
	}
	return false
}

func encode(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// parseString accepts either a JSON string or a raw unquoted value.
func parseString(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return raw
}

func parseStrings(raw string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func parseInt(raw string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(parseString(raw))); err == nil {
		return v
	}
	return fallback
}

func parseBool(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(parseString(raw))) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return fallback
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(parseString(raw)), 64)
}
