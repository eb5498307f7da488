// Package loader provides the plugin-like feature loading system.
//
// Each HTTP feature of the bootstrapper (run progress, spec export) implements the
// Feature interface and is registered with a Manager at startup.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager keeps features in registration order. LoadAll skips disabled features
// and returns the first Load error.
package loader
