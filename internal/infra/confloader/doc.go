// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags that were set)
//  2. Environment variables
//  3. The YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Environment variables take the form <PREFIX><SECTION>_<KEY>: the first
// underscore after the prefix separates section from key, so
// COMPLITRACKER_API_RATE_LIMIT maps to api.rate_limit.
package confloader
