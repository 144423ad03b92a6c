package store

// Product is a catalog item as the dialogue sees it.
type Product struct {
	ID          int64             `json:"id"`
	DisplayName string            `json:"display_name"`
	ImageURL    string            `json:"image_url"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func (p Product) Clone() Product {
	c := p
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return c
}

// FeatureRow is one line of the feature-vector snapshot used to build the similarity index.
type FeatureRow struct {
	ProductID   int64
	DisplayName string
	ImageURL    string
	Vector      []float32
}

// Customer is the identity bound to a session by identify.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
}

func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
