// Package storage defines the persistence interfaces for arrangements and
// validation attempts. The engine core performs no IO of its own; stores
// are wired only by commands and the serve surface. Implementations live in
// subpackages.
package storage
