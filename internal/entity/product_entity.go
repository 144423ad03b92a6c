package entity

type Product struct {
	Id          int64
	DisplayName string
	ImageUrl    string
	Attributes  map[string]string
}

type ProductFeature struct {
	ProductId   int64
	DisplayName string
	ImageUrl    string
	Vector      []float32
}
