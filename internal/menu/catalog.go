package menu

import (
	"github.com/shopspring/decimal"

	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

// Item is a catalog entry. Reference data only, never mutated at runtime.
type Item struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	NameIt        string             `json:"name_it,omitempty"`
	Description   string             `json:"description"`
	DescriptionIt string             `json:"description_it,omitempty"`
	Price         decimal.Decimal    `json:"price"`
	Category      enums.MenuCategory `json:"category"`
	Image         string             `json:"image,omitempty"`
	IsVegetarian  bool               `json:"is_vegetarian"`
	IsSpicy       bool               `json:"is_spicy,omitempty"`
	IsPopular     bool               `json:"is_popular,omitempty"`
}

// Extra is an optional paid add-on attachable to pizzas and calzones.
type Extra struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	NameIt   string              `json:"name_it,omitempty"`
	Price    decimal.Decimal     `json:"price"`
	Category enums.ExtraCategory `json:"category"`
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var items = []Item{
	{
		ID:            "pizza-1",
		Name:          "Margherita",
		NameIt:        "Margherita",
		Description:   "Classic pizza with tomato sauce and mozzarella cheese",
		DescriptionIt: "Tomate y mozzarella",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/margherita.jpg",
		IsVegetarian:  true,
		IsPopular:     true,
	},
	{
		ID:            "pizza-7",
		Name:          "4 Stagioni",
		NameIt:        "Quattro Stagioni",
		Description:   "Tomato sauce, mozzarella, ham, mushrooms, salami, artichokes",
		DescriptionIt: "Tomate, mozzarella, jamón, champiñones, salami, alcachofas",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/4-stagion.jpg",
	},
	{
		ID:            "pizza-14",
		Name:          "Vegetariana",
		NameIt:        "Vegetariana",
		Description:   "Tomato sauce, mozzarella, fresh vegetables and basil oil",
		DescriptionIt: "Tomate, mozzarella, verduras frescas y aceite de albahaca",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/vegetariana.jpg",
		IsVegetarian:  true,
	},
	{
		ID:            "pizza-22",
		Name:          "Parma",
		NameIt:        "Parma",
		Description:   "Tomato sauce, mozzarella, serrano ham, arugula and parmesan",
		DescriptionIt: "Tomate, mozzarella, jamón serrano, rúcula y parmesano",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/parma.jpg",
	},
	{
		ID:            "pizza-18",
		Name:          "4 Formaggi",
		NameIt:        "Quattro Formaggi",
		Description:   "Tomato sauce, mozzarella and 4 mixed cheeses",
		DescriptionIt: "Tomate, mozzarella y 4 quesos variados",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/4-formaggi.jpg",
		IsVegetarian:  true,
	},
	{
		ID:            "pizza-23",
		Name:          "Islas Baleares",
		NameIt:        "Isole Baleari",
		Description:   "Tomato sauce, mozzarella, sobrasada, Mahon cheese and honey",
		DescriptionIt: "Tomate, mozzarella, sobrasada, queso mahón y miel",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryPizza,
		Image:         "/assets/islas-baleares.jpg",
		IsPopular:     true,
	},
	{
		ID:            "calzone-32",
		Name:          "Clasico",
		NameIt:        "Classico",
		Description:   "Tomato sauce, mozzarella cheese, ham and mushrooms",
		DescriptionIt: "Tomate, mozzarella, jamón y champiñones",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryCalzone,
		Image:         "/assets/calzone-clasico.jpg",
	},
	{
		ID:            "calzone-33",
		Name:          "Vegetariano",
		NameIt:        "Vegetariano",
		Description:   "Tomato sauce, mozzarella cheese and fresh vegetables",
		DescriptionIt: "Tomate, mozzarella y verduras frescas",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryCalzone,
		Image:         "/assets/vegetariano-calzone.jpg",
		IsVegetarian:  true,
	},
	{
		ID:            "calzone-34",
		Name:          "4 Formaggi",
		NameIt:        "Quattro Formaggi",
		Description:   "Tomato sauce, mozzarella cheese and 4 mixed cheeses",
		DescriptionIt: "Tomate, mozzarella y 4 quesos variados",
		Price:         price("9.50"),
		Category:      enums.MenuCategoryCalzone,
		Image:         "/assets/4-formaggi-calzone.jpg",
		IsVegetarian:  true,
	},
}

var extras = []Extra{
	{ID: "pepperoni", Name: "Extra Pepperoni", NameIt: "Pepperoni Extra", Price: price("1.50"), Category: enums.ExtraCategoryTopping},
	{ID: "mushrooms", Name: "Mushrooms", NameIt: "Funghi", Price: price("1.00"), Category: enums.ExtraCategoryTopping},
	{ID: "olives", Name: "Olives", NameIt: "Olive", Price: price("1.00"), Category: enums.ExtraCategoryTopping},
	{ID: "onions", Name: "Onions", NameIt: "Cipolle", Price: price("0.75"), Category: enums.ExtraCategoryTopping},
	{ID: "bell-peppers", Name: "Bell Peppers", NameIt: "Peperoni", Price: price("1.00"), Category: enums.ExtraCategoryTopping},
	{ID: "jalapenos", Name: "Jalapeños", NameIt: "Jalapeños", Price: price("1.00"), Category: enums.ExtraCategoryTopping},
	{ID: "ham", Name: "Ham", NameIt: "Prosciutto", Price: price("1.50"), Category: enums.ExtraCategoryTopping},
	{ID: "bacon", Name: "Bacon", NameIt: "Pancetta", Price: price("1.50"), Category: enums.ExtraCategoryTopping},
	{ID: "chicken", Name: "Grilled Chicken", NameIt: "Pollo Grigliato", Price: price("2.00"), Category: enums.ExtraCategoryTopping},
	{ID: "sausage", Name: "Italian Sausage", NameIt: "Salsiccia Italiana", Price: price("1.50"), Category: enums.ExtraCategoryTopping},
	{ID: "anchovies", Name: "Anchovies", NameIt: "Acciughe", Price: price("1.50"), Category: enums.ExtraCategoryTopping},
	{ID: "extra-mozzarella", Name: "Extra Mozzarella", NameIt: "Mozzarella Extra", Price: price("1.50"), Category: enums.ExtraCategoryCheese},
	{ID: "parmesan", Name: "Parmesan", NameIt: "Parmigiano", Price: price("1.00"), Category: enums.ExtraCategoryCheese},
	{ID: "gorgonzola", Name: "Gorgonzola", NameIt: "Gorgonzola", Price: price("1.50"), Category: enums.ExtraCategoryCheese},
	{ID: "ricotta", Name: "Ricotta", NameIt: "Ricotta", Price: price("1.25"), Category: enums.ExtraCategoryCheese},
	{ID: "extra-sauce", Name: "Extra Tomato Sauce", NameIt: "Salsa Extra", Price: price("0.50"), Category: enums.ExtraCategorySauce},
	{ID: "garlic-oil", Name: "Garlic Oil", NameIt: "Olio all'Aglio", Price: price("0.75"), Category: enums.ExtraCategorySauce},
	{ID: "hot-sauce", Name: "Spicy Sauce", NameIt: "Salsa Piccante", Price: price("0.75"), Category: enums.ExtraCategorySauce},
	{ID: "gluten-free-base", Name: "Gluten-Free Base", NameIt: "Base Senza Glutine", Price: price("2.50"), Category: enums.ExtraCategoryOther},
}
