package transport

import "github.com/vkblast/vkblast/core/factory"

var clientRegistry = factory.NewRegistry[Client]()

// RegisterClient adds a transport factory identified by name. Backends
// register themselves from an init function.
func RegisterClient(name string, f factory.Factory[Client]) error {
	return clientRegistry.Register(name, f)
}

// NewClient creates a transport Client from the provided configuration.
func NewClient(cfg factory.ModuleConfig) (Client, error) {
	return clientRegistry.Create(cfg)
}
