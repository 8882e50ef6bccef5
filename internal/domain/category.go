package domain

import "strings"

// Category is one of the fixed expense categories. The set is closed:
// imports map free-text source categories onto it, falling back to
// CategoryOther when nothing matches.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryShopping      Category = "shopping"
	CategoryEducation     Category = "education"
	CategoryTravel        Category = "travel"
	CategorySubscriptions Category = "subscriptions"
	CategoryOther         Category = "other"
)

// Categories returns every valid expense category.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryHousing,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryHealth,
		CategoryShopping,
		CategoryEducation,
		CategoryTravel,
		CategorySubscriptions,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// CategoryMapper is a many-to-one lookup from free-text source categories
// (statement exports, CSV files) to the fixed category set. The alias table
// is data, not code: instances can be extended with new aliases without
// touching the mapping logic.
type CategoryMapper struct {
	aliases map[string]Category
}

// NewCategoryMapper returns a mapper loaded with the default alias table.
func NewCategoryMapper() *CategoryMapper {
	m := &CategoryMapper{aliases: make(map[string]Category, len(defaultAliases))}
	for src, cat := range defaultAliases {
		m.aliases[src] = cat
	}
	return m
}

// WithAliases adds or overrides aliases and returns the mapper.
// Keys are lower-cased and trimmed before insertion.
func (m *CategoryMapper) WithAliases(extra map[string]Category) *CategoryMapper {
	for src, cat := range extra {
		m.aliases[normalizeAlias(src)] = cat
	}
	return m
}

// Map resolves a source category. ok is false when the source is unknown
// and the caller should fall back to CategoryOther, preserving the source
// text with an OriginalCategoryTagPrefix tag.
func (m *CategoryMapper) Map(source string) (Category, bool) {
	cat, ok := m.aliases[normalizeAlias(source)]
	return cat, ok
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultAliases = map[string]Category{
	"food":           CategoryFood,
	"groceries":      CategoryFood,
	"grocery":        CategoryFood,
	"supermarket":    CategoryFood,
	"restaurant":     CategoryFood,
	"restaurants":    CategoryFood,
	"dining":         CategoryFood,
	"eating out":     CategoryFood,
	"coffee":         CategoryFood,
	"cafe":           CategoryFood,
	"takeaway":       CategoryFood,

	"transport":        CategoryTransport,
	"transportation":   CategoryTransport,
	"fuel":             CategoryTransport,
	"petrol":           CategoryTransport,
	"gas":              CategoryTransport,
	"parking":          CategoryTransport,
	"taxi":             CategoryTransport,
	"uber":             CategoryTransport,
	"public transport": CategoryTransport,
	"car":              CategoryTransport,

	"housing":  CategoryHousing,
	"rent":     CategoryHousing,
	"mortgage": CategoryHousing,
	"home":     CategoryHousing,

	"utilities":   CategoryUtilities,
	"electricity": CategoryUtilities,
	"water":       CategoryUtilities,
	"energy":      CategoryUtilities,
	"internet":    CategoryUtilities,
	"phone":       CategoryUtilities,
	"mobile":      CategoryUtilities,

	"entertainment": CategoryEntertainment,
	"movies":        CategoryEntertainment,
	"cinema":        CategoryEntertainment,
	"games":         CategoryEntertainment,
	"music":         CategoryEntertainment,

	"health":     CategoryHealth,
	"healthcare": CategoryHealth,
	"medical":    CategoryHealth,
	"pharmacy":   CategoryHealth,
	"fitness":    CategoryHealth,
	"gym":        CategoryHealth,

	"shopping":    CategoryShopping,
	"clothes":     CategoryShopping,
	"clothing":    CategoryShopping,
	"electronics": CategoryShopping,
	"amazon":      CategoryShopping,

	"education": CategoryEducation,
	"books":     CategoryEducation,
	"courses":   CategoryEducation,
	"tuition":   CategoryEducation,

	"travel":   CategoryTravel,
	"holiday":  CategoryTravel,
	"vacation": CategoryTravel,
	"flights":  CategoryTravel,
	"hotel":    CategoryTravel,

	"subscription":  CategorySubscriptions,
	"subscriptions": CategorySubscriptions,
	"netflix":       CategorySubscriptions,
	"spotify":       CategorySubscriptions,
	"software":      CategorySubscriptions,

	"other":         CategoryOther,
	"misc":          CategoryOther,
	"miscellaneous": CategoryOther,
	"general":       CategoryOther,
}
