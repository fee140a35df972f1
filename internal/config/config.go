// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/wellplate/internal/features"
)

// Config holds the process settings. Zero values are never used; Load fills
// every field.
type Config struct {
	Addr            string
	CalibrationPath string

	SatThreshold uint8
	ValThreshold uint8
	ExpectedCols int
	InnerScale   float64
	Channel      features.Channel
	MaxDimension int
	ReadLabel    bool
	OCRLanguage  string
	MaxUploadMB  int64
	Debug        bool
}

// Load reads the WELLPLATE_* environment variables. Malformed values fall back
// to their defaults and are returned as warnings for the caller to log.
func Load() (*Config, []string) {
	var warnings []string
	warn := func(key, val string, err error) {
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: %v", key, val, err))
	}

	cfg := &Config{
		Addr:            getEnv("WELLPLATE_ADDR", ":8000"),
		CalibrationPath: getEnv("WELLPLATE_CALIBRATION", ""),
		OCRLanguage:     getEnv("WELLPLATE_OCR_LANG", "eng"),
		Debug:           strings.EqualFold(getEnv("WELLPLATE_LOG_LEVEL", ""), "debug"),
	}

	cfg.SatThreshold = uint8(getInt("WELLPLATE_SAT_THRESH", 30, 0, 255, warn))
	cfg.ValThreshold = uint8(getInt("WELLPLATE_VAL_THRESH", 30, 0, 255, warn))
	cfg.ExpectedCols = getInt("WELLPLATE_EXPECTED_COLS", 12, 1, 1000, warn)
	cfg.MaxDimension = getInt("WELLPLATE_MAX_DIMENSION", 2000, 0, 1<<16, warn)
	cfg.MaxUploadMB = int64(getInt("WELLPLATE_MAX_UPLOAD_MB", 20, 1, 1024, warn))
	cfg.InnerScale = getFloat("WELLPLATE_INNER_SCALE", features.DefaultInnerScale, warn)
	cfg.ReadLabel = getBool("WELLPLATE_READ_LABEL", false, warn)

	cfg.Channel = features.ChannelRed
	if v := getEnv("WELLPLATE_CHANNEL", ""); v != "" {
		ch, err := features.ParseChannel(v)
		if err != nil {
			warn("WELLPLATE_CHANNEL", v, err)
		} else {
			cfg.Channel = ch
		}
	}

	return cfg, warnings
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal, min, max int, warn func(string, string, error)) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		warn(key, val, err)
		return defaultVal
	}
	if n < min || n > max {
		warn(key, val, fmt.Errorf("out of range [%d, %d]", min, max))
		return defaultVal
	}
	return n
}

func getFloat(key string, defaultVal float64, warn func(string, string, error)) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		warn(key, val, err)
		return defaultVal
	}
	if f <= 0 || f > 1 {
		warn(key, val, fmt.Errorf("must be in (0, 1]"))
		return defaultVal
	}
	return f
}

func getBool(key string, defaultVal bool, warn func(string, string, error)) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		warn(key, val, err)
		return defaultVal
	}
	return b
}
