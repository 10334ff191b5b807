package parser

import (
	"fmt"

	"verifact/internal/config"
	"verifact/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from the parser config.
type ProviderFactory func(cfg *config.ParserConfig) (port.DocumentParser, error)

// registry of extraction provider factories, populated via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a DocumentParser using the registered factory for the
// configured provider.
func NewParser(cfg *config.ParserConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
