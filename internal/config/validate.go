package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate checks all configuration values and returns all errors found,
// so users can fix every issue in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateArdrive(&cfg.Ardrive)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateArdrive(a *ArdriveConfig) []error {
	var errs []error

	if a.VendoredPath == "" {
		errs = append(errs, errors.New("ardrive.vendored_path: must not be empty"))
	}

	if a.SystemBinary == "" {
		errs = append(errs, errors.New("ardrive.system_binary: must not be empty"))
	}

	errs = append(errs, validateGateway(a.Gateway)...)
	errs = append(errs, validateDurationNonNeg("ardrive.timeout", a.Timeout)...)

	return errs
}

func validateGateway(gateway string) []error {
	u, err := url.Parse(gateway)
	if err != nil {
		return []error{fmt.Errorf("ardrive.gateway: invalid URL %q: %w", gateway, err)}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []error{fmt.Errorf("ardrive.gateway: must be an absolute http(s) URL, got %q", gateway)}
	}

	return nil
}

func validateDurationNonNeg(field, value string) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < 0 {
		return []error{fmt.Errorf("%s: must be >= 0, got %s", field, d)}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	errs = append(errs, validateLogLevel(l.LogLevel)...)
	errs = append(errs, validateLogFormat(l.LogFormat)...)

	return errs
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogFormat(format string) []error {
	if !validLogFormats[format] {
		return []error{fmt.Errorf("logging.log_format: must be one of auto, text, json; got %q", format)}
	}

	return nil
}
