// Package pkgconfig reads service settings through the Config interface.
//
// The Viper implementation loads a YAML file and lets environment variables
// override any key, with dots replaced by underscores
// (storage.lock_timeout -> STORAGE_LOCK_TIMEOUT).
package pkgconfig
