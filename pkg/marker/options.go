package marker

import "log/slog"

// Option configures a Template created by New.
type Option func(*Template)

// WithLogger sets the logger used for debug output. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithLegacyNames makes Process accept any subpart and marker name that
// contains no '#' character, as older templates did. Names set through the
// API are still checked against the strict grammar, so subparts with legacy
// names can only be rendered as part of an enclosing subpart.
func WithLegacyNames() Option {
	return func(t *Template) {
		t.scanner = legacyScanner
	}
}
