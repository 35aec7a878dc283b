package embedded

import (
	_ "embed"
)

// PresetsYAML is the built-in preset catalog
//
//go:embed data/presets.yaml
var PresetsYAML []byte
