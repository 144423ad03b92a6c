package specification

import (
	"fashion-recommender-be/pkg/store"

	"gorm.io/gorm"
)

// attributeColumns is the only source of column names in product filters.
var attributeColumns = map[string]string{
	store.AttrGender:         "gender",
	store.AttrMasterCategory: "mastercategory",
	store.AttrSubCategory:    "subcategory",
	store.AttrArticleType:    "articletype",
	store.AttrBaseColour:     "basecolour",
	store.AttrSeason:         "season",
	store.AttrYear:           "year",
	store.AttrUsage:          "usage",
}

// AttributeExpr returns the SQL text expression for an attribute, or false
// when the attribute is outside the vocabulary. Year is stored as an integer
// and compared as text so every filter value binds as a string.
func AttributeExpr(attribute string) (string, bool) {
	column, ok := attributeColumns[attribute]
	if !ok {
		return "", false
	}
	if attribute == store.AttrYear {
		return "CAST(" + column + " AS TEXT)", true
	}
	return column, true
}

// MatchingFilters restricts products to the filter set. Unknown keys and
// empty value lists are skipped; an empty set matches everything.
type MatchingFilters struct {
	Filters store.FilterSet
}

func (s MatchingFilters) Apply(db *gorm.DB) *gorm.DB {
	for _, key := range s.Filters.Keys() {
		values := s.Filters[key]
		expr, ok := AttributeExpr(key)
		if !ok || len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			db = db.Where(expr+" = ?", values[0])
		} else {
			db = db.Where(expr+" IN ?", values)
		}
	}
	return db
}

// AttributeNotNull keeps rows where attribute has a value.
type AttributeNotNull struct {
	Attribute string
}

func (s AttributeNotNull) Apply(db *gorm.DB) *gorm.DB {
	column, ok := attributeColumns[s.Attribute]
	if !ok {
		return db.Where("1 = 0")
	}
	return db.Where(column + " IS NOT NULL")
}
