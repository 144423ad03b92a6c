package specification

import "gorm.io/gorm"

type ByCustomerID struct {
	CustomerID int64
}

func (s ByCustomerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ?", s.CustomerID)
}
