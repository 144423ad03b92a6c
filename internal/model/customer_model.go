package model

type Customer struct {
	CustomerId int64  `gorm:"column:customer_id;primaryKey"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
}

func (Customer) TableName() string {
	return "customers"
}
