// Package memory provides mutex-guarded in-memory repositories.
//
// Entities are copied on the way in and on the way out so callers never
// share state with the store; updates go through version-checked
// compare-and-swap exactly like the gorm repositories.
package memory
