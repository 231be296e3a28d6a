// Package config provides configuration structures and utilities for harvest.
// It defines the engine options for crawling, fetching, extraction, and
// report generation, plus the YAML configuration file with per-site overrides.
package config
