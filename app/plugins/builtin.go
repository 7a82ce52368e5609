// Package plugins links the built-in transport clients and metrics sinks
// into the binary. Importing it registers them with their factories, so
// config files can select them by type name.
package plugins

import (
	_ "github.com/vkblast/vkblast/infra/metrics"
	_ "github.com/vkblast/vkblast/infra/mqtt"
	_ "github.com/vkblast/vkblast/infra/vk"
)
