// Package config provides configuration management for the home decoration
// game.
//
// The config package handles:
//   - Loading house layouts from JSON files, with caching
//   - Layout validation through the engine's rules
//   - Default house selection
//   - Server settings from YAML
//
// House Format:
//
// Each house file lists its rooms. A room has a size and one layout string
// per row, one legend character per cell:
//
//	F=floor  T=table  W=wall  O=outdoor  D=decoration  X=forbidden
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	house, err := manager.LoadConfig("cottage")
//	houses, err := manager.ListConfigs()
//
// Settings:
//
// LoadSettings reads a YAML file and fills every missing value with its
// default, so a settings file only needs the keys it changes.
package config
