// Package factory provides a small generic registry used to build modules
// from configuration. A module is named by a type string and carries a map
// of raw settings; its factory decodes the settings into a typed struct and
// returns the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[transport.Client]()
//	reg.Register("vk", func(conf map[string]any) (transport.Client, error) {
//	    var c vk.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return vk.NewClient(c)
//	})
//	cli, err := reg.Create(factory.ModuleConfig{Type: "vk", Conf: map[string]any{"api_version": "5.131"}})
package factory
