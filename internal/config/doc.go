// Package config provides configuration structures and utilities for
// gravestash: defaults and validation, the optional .gravestash YAML file,
// and the instruction file that lists the cemeteries to crawl.
package config
