package model

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Product struct {
	Id                 int64             `gorm:"column:id;primaryKey"`
	ProductDisplayName string            `gorm:"column:productdisplayname"`
	ImageUrl           *string           `gorm:"column:image_url"`
	Gender             *string           `gorm:"column:gender"`
	MasterCategory     *string           `gorm:"column:mastercategory"`
	SubCategory        *string           `gorm:"column:subcategory"`
	ArticleType        *string           `gorm:"column:articletype"`
	BaseColour         *string           `gorm:"column:basecolour"`
	Season             *string           `gorm:"column:season"`
	Year               *int              `gorm:"column:year"`
	Usage              *string           `gorm:"column:usage"`
	ExtraAttributes    datatypes.JSONMap `gorm:"column:extra_attributes"` // free-form attributes outside the filter vocabulary
}

func (Product) TableName() string {
	return "products"
}

// ProductFeature is one encoded feature vector joined with its display data.
type ProductFeature struct {
	ProductId          int64            `gorm:"column:product_id"`
	FeatureVector      *pgvector.Vector `gorm:"column:feature_vector"`
	ProductDisplayName *string          `gorm:"column:productdisplayname"`
	ImageUrl           *string          `gorm:"column:image_url"`
}

func (ProductFeature) TableName() string {
	return "product_features_encoded"
}
