package chatmark

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

type renderConfig struct {
	osc8            bool
	keepFrontMatter bool
	skipValidation  bool
}

// WithOSC8 enables or disables OSC 8 hyperlinks.
func WithOSC8(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.osc8 = enabled
	}
}

// WithFrontMatter keeps a leading front matter block in the output instead
// of stripping it.
func WithFrontMatter(keep bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.keepFrontMatter = keep
	}
}

// WithValidation enables or disables input validation. Validation is on by
// default and rejects invalid UTF-8 and binary-looking input.
func WithValidation(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.skipValidation = !enabled
	}
}
