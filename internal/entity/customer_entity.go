package entity

type Customer struct {
	Id        int64
	FirstName string
	LastName  string
}
