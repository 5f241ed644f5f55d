// Package models contains GORM persistence models for the marketplace tables.
//
// Domain entities carry no ORM tags; each model here owns its table mapping
// and converts to and from its domain type with ToDomain/FromDomain.
package models
