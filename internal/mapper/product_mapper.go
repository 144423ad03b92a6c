package mapper

import (
	"fmt"
	"strconv"

	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/pkg/store"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	attrs := map[string]string{}
	put := func(key string, v *string) {
		if v != nil && *v != "" {
			attrs[key] = *v
		}
	}
	put(store.AttrGender, p.Gender)
	put(store.AttrMasterCategory, p.MasterCategory)
	put(store.AttrSubCategory, p.SubCategory)
	put(store.AttrArticleType, p.ArticleType)
	put(store.AttrBaseColour, p.BaseColour)
	put(store.AttrSeason, p.Season)
	put(store.AttrUsage, p.Usage)
	if p.Year != nil {
		attrs[store.AttrYear] = strconv.Itoa(*p.Year)
	}
	for k, v := range p.ExtraAttributes {
		if _, taken := attrs[k]; !taken && v != nil {
			attrs[k] = fmt.Sprint(v)
		}
	}

	return &entity.Product{
		Id:          p.Id,
		DisplayName: p.ProductDisplayName,
		ImageUrl:    deref(p.ImageUrl),
		Attributes:  attrs,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *ProductMapper) FeatureToEntity(f *model.ProductFeature) *entity.ProductFeature {
	if f == nil {
		return nil
	}
	var vector []float32
	if f.FeatureVector != nil {
		vector = f.FeatureVector.Slice()
	}
	return &entity.ProductFeature{
		ProductId:   f.ProductId,
		DisplayName: deref(f.ProductDisplayName),
		ImageUrl:    deref(f.ImageUrl),
		Vector:      vector,
	}
}

// ToStore converts to the type the recommendation core works with.
func (m *ProductMapper) ToStore(e *entity.Product) store.Product {
	return store.Product{
		ID:          e.Id,
		DisplayName: e.DisplayName,
		ImageURL:    e.ImageUrl,
		Attributes:  e.Attributes,
	}
}

func (m *ProductMapper) FeatureToStore(e *entity.ProductFeature) store.FeatureRow {
	return store.FeatureRow{
		ProductID:   e.ProductId,
		DisplayName: e.DisplayName,
		ImageURL:    e.ImageUrl,
		Vector:      e.Vector,
	}
}
