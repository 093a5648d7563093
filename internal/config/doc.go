// Package config provides configuration structures and utilities for corpusdedup.
// It defines the MinHash/LSH parameters, corpus input and output settings,
// preprocessing options and report preferences, and loads them from a YAML
// file and CORPUSDEDUP_* environment variables.
package config
