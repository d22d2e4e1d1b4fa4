// Package config loads, validates, and defaults the TOML configuration for
// mangasync. Lookup order is the explicit --config flag, then
// ~/.config/mangasync/config.toml, then ./mangasync.toml; missing files fall
// back to repository defaults so read-only commands still work.
package config
