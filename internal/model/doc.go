// Package model defines the value types shared across gravestash: relation
// kinds, memorial and cemetery references, report columns and cells.
//
// The enumerations here are closed. Lookup tables indexed by them are
// fixed-size arrays, so a table that forgets an entry is caught by the
// tests that walk every value.
package model
