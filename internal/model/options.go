package model

import "strings"

// Option is a selectable value with a stable identifier.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// OptionGroup groups options under a heading, e.g. "Tops".
type OptionGroup struct {
	Group string   `json:"group"`
	Items []Option `json:"items"`
}

// CategoryOptions is the category catalog offered by the add-item form.
var CategoryOptions = []OptionGroup{
	{Group: "Tops", Items: []Option{
		{"Cardigans", "tops_cardigans"},
		{"Coats", "tops_coats"},
		{"Hoodies", "tops_hoodies"},
		{"Jackets", "tops_jackets"},
		{"Overshirts", "tops_overshirts"},
		{"Shirts", "tops_shirts"},
		{"Sweaters", "tops_sweaters"},
		{"Sweatshirts", "tops_sweatshirts"},
		{"Tank Tops", "tops_tank_tops"},
		{"Vests", "tops_vests"},
	}},
	{Group: "Bottoms", Items: []Option{
		{"Leggings", "bottoms_leggings"},
		{"Pants", "bottoms_pants"},
		{"Shorts", "bottoms_shorts"},
		{"Swim", "bottoms_swim"},
	}},
	{Group: "Accessories", Items: []Option{
		{"Bags", "accessories_bags"},
		{"Hats", "accessories_hats"},
		{"Jewelry", "accessories_jewelry"},
		{"Scarfs", "accessories_scarfs"},
		{"Shoes", "accessories_shoes"},
		{"Sunglasses", "accessories_sunglasses"},
	}},
	{Group: "Other", Items: []Option{
		{"Onesies", "other_onesies"},
		{"Overalls", "other_overalls"},
	}},
}

// SizeOptions is the size catalog offered by the add-item form.
var SizeOptions = []OptionGroup{
	{Group: "General Sizes", Items: []Option{
		{"XS", "general_xs"},
		{"S", "general_s"},
		{"M", "general_m"},
		{"L", "general_l"},
		{"XL", "general_xl"},
		{"OS", "general_os"},
	}},
	{Group: "Numeric General Sizes", Items: []Option{
		{"0", "num_general_0"},
		{"2", "num_general_2"},
		{"4", "num_general_4"},
		{"6", "num_general_6"},
		{"8", "num_general_8"},
		{"10", "num_general_10"},
		{"12", "num_general_12"},
		{"14", "num_general_14"},
		{"16", "num_general_16"},
		{"18", "num_general_18"},
	}},
	{Group: "Pant Sizes (Waist x Inseam)", Items: []Option{
		{"28x30", "pant_28x30"},
		{"28x32", "pant_28x32"},
		{"30x30", "pant_30x30"},
		{"30x32", "pant_30x32"},
		{"32x30", "pant_32x30"},
		{"32x32", "pant_32x32"},
		{"34x30", "pant_34x30"},
		{"34x32", "pant_34x32"},
		{"36x30", "pant_36x30"},
		{"36x32", "pant_36x32"},
		{"38x30", "pant_38x30"},
		{"38x32", "pant_38x32"},
	}},
	{Group: "Men's Shoe Sizes", Items: []Option{
		{"6", "mens_shoe_6"},
		{"7", "mens_shoe_7"},
		{"8", "mens_shoe_8"},
		{"9", "mens_shoe_9"},
		{"10", "mens_shoe_10"},
		{"11", "mens_shoe_11"},
		{"12", "mens_shoe_12"},
		{"13", "mens_shoe_13"},
	}},
	{Group: "Women's Shoe Sizes", Items: []Option{
		{"5", "womens_shoe_5"},
		{"6", "womens_shoe_6"},
		{"7", "womens_shoe_7"},
		{"8", "womens_shoe_8"},
		{"9", "womens_shoe_9"},
		{"10", "womens_shoe_10"},
		{"11", "womens_shoe_11"},
	}},
}

// ConditionOptions lists the accepted item conditions.
var ConditionOptions = []Option{
	{"New", ConditionNew},
	{"Used", ConditionUsed},
}

// CategoryGroups returns the top-level category names in catalog order.
func CategoryGroups() []string {
	groups := make([]string, 0, len(CategoryOptions))
	for _, g := range CategoryOptions {
		groups = append(groups, g.Group)
	}
	return groups
}

// LookupChoice resolves a flat option identifier ("tops_jackets") or label
// ("Jackets") against a catalog. A bare group name resolves to that group with
// an empty value.
func LookupChoice(catalog []OptionGroup, s string) (Choice, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Choice{}, false
	}
	for _, g := range catalog {
		for _, o := range g.Items {
			if o.Value == s {
				return Choice{Group: g.Group, Value: o.Label}, true
			}
		}
	}
	for _, g := range catalog {
		if strings.EqualFold(g.Group, s) {
			return Choice{Group: g.Group}, true
		}
		for _, o := range g.Items {
			if strings.EqualFold(o.Label, s) {
				return Choice{Group: g.Group, Value: o.Label}, true
			}
		}
	}
	return Choice{}, false
}

// ValidCondition reports whether c is an accepted condition.
func ValidCondition(c string) bool {
	return c == ConditionNew || c == ConditionUsed
}
