package specification

import "gorm.io/gorm"

// Specification narrows a catalog query. Values are always bound, never inlined.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
