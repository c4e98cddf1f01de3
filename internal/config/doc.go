// Package config provides configuration structures and utilities for
// pagestash. It defines storage paths, search defaults, migration
// settings, and report output preferences.
package config
