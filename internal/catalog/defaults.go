package catalog

import (
	"github.com/shopspring/decimal"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

const imageHost = "https://images.pexels.com/photos/"

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func factor(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func image(photo string, width string) string {
	return imageHost + photo + "/pexels-photo-" + photo + ".jpeg?auto=compress&cs=tinysrgb&w=" + width
}

func standardSizes() []domain.CakeSize {
	return []domain.CakeSize{
		{ID: "small", Name: `6" Small`, Serves: 8, Multiplier: factor("1")},
		{ID: "medium", Name: `8" Medium`, Serves: 12, Multiplier: factor("1.5")},
		{ID: "large", Name: `10" Large`, Serves: 20, Multiplier: factor("2.2")},
	}
}

// Default returns the built-in storefront catalog. Each call returns a fresh copy.
func Default() *Catalog {
	return &Catalog{
		Bases: []domain.CakeBase{
			{ID: "vanilla", Name: "Vanilla", Price: amount(25), Image: image("1126359", "300")},
			{ID: "chocolate", Name: "Chocolate", Price: amount(30), Image: image("2067396", "300")},
			{ID: "red-velvet", Name: "Red Velvet", Price: amount(35), Image: image("6133307", "300")},
			{ID: "lemon", Name: "Lemon", Price: amount(28), Image: image("1448721", "300")},
			{ID: "strawberry", Name: "Strawberry", Price: amount(32), Image: image("1721932", "300")},
		},
		Shapes: []domain.CakeShape{
			{ID: "round", Name: "Round", Multiplier: factor("1"), Sizes: standardSizes()},
			{ID: "square", Name: "Square", Multiplier: factor("1.1"), Sizes: standardSizes()},
			{ID: "heart", Name: "Heart", Multiplier: factor("1.3"), Sizes: standardSizes()[:2]},
			{ID: "tiered", Name: "Tiered (2-layer)", Multiplier: factor("1.8"), Sizes: []domain.CakeSize{
				{ID: "medium", Name: `6"+8" Medium`, Serves: 18, Multiplier: factor("1.8")},
				{ID: "large", Name: `8"+10" Large`, Serves: 30, Multiplier: factor("2.5")},
			}},
		},
		Fillings: []domain.CakeFilling{
			{ID: "vanilla-cream", Name: "Vanilla Cream", Price: amount(5)},
			{ID: "chocolate-mousse", Name: "Chocolate Mousse", Price: amount(8)},
			{ID: "strawberry-jam", Name: "Strawberry Jam", Price: amount(6)},
			{ID: "caramel", Name: "Salted Caramel", Price: amount(7)},
			{ID: "nutella", Name: "Nutella", Price: amount(10)},
			{ID: "fresh-fruits", Name: "Fresh Fruits", Price: amount(12)},
			{ID: "lemon-curd", Name: "Lemon Curd", Price: amount(6)},
			{ID: "cream-cheese", Name: "Cream Cheese", Price: amount(8)},
		},
		Frostings: []domain.CakeFrosting{
			{ID: "buttercream-white", Name: "White Buttercream", Price: amount(8), Image: image("1126359", "200")},
			{ID: "buttercream-pink", Name: "Pink Buttercream", Price: amount(10), Image: image("1721932", "200")},
			{ID: "chocolate-ganache", Name: "Chocolate Ganache", Price: amount(12), Image: image("2067396", "200")},
			{ID: "fondant-white", Name: "White Fondant", Price: amount(15), Image: image("1126359", "200")},
			{ID: "whipped-cream", Name: "Whipped Cream", Price: amount(6), Image: image("1721932", "200")},
			{ID: "cream-cheese-frosting", Name: "Cream Cheese Frosting", Price: amount(10), Image: image("6133307", "200")},
		},
		Addons: []domain.CakeAddon{
			{ID: "birthday-candles", Name: "Birthday Candles", Price: amount(3), Category: domain.AddonCategoryCandle},
			{ID: "number-candles", Name: "Number Candles", Price: amount(8), Category: domain.AddonCategoryCandle},
			{ID: "sparkler-candles", Name: "Sparkler Candles", Price: amount(12), Category: domain.AddonCategoryCandle},
			{ID: "edible-flowers", Name: "Edible Flowers", Price: amount(15), Category: domain.AddonCategoryDecoration},
			{ID: "chocolate-drip", Name: "Chocolate Drip", Price: amount(10), Category: domain.AddonCategoryDecoration},
			{ID: "gold-leaf", Name: "Edible Gold Leaf", Price: amount(25), Category: domain.AddonCategoryDecoration},
			{ID: "fresh-berries", Name: "Fresh Berries", Price: amount(18), Category: domain.AddonCategoryDecoration},
			{ID: "macarons", Name: "Mini Macarons", Price: amount(20), Category: domain.AddonCategoryDecoration},
			{ID: "custom-message", Name: "Custom Message", Price: amount(5), Category: domain.AddonCategoryMessage},
			{ID: "photo-print", Name: "Edible Photo Print", Price: amount(30), Category: domain.AddonCategoryMessage},
		},
		Featured: []domain.FeaturedCake{
			{ID: "1", Name: "Rainbow Celebration Cake", Description: "Colorful layers with vanilla buttercream", Image: image("1126359", "400"), Price: amount(75)},
			{ID: "2", Name: "Chocolate Decadence", Description: "Rich chocolate cake with ganache", Image: image("2067396", "400"), Price: amount(85)},
			{ID: "3", Name: "Red Velvet Supreme", Description: "Classic red velvet with cream cheese frosting", Image: image("6133307", "400"), Price: amount(80)},
			{ID: "4", Name: "Strawberry Dream", Description: "Fresh strawberry cake with whipped cream", Image: image("1721932", "400"), Price: amount(90)},
		},
		DeliverySlots: []string{
			"9:00 AM - 11:00 AM",
			"11:00 AM - 1:00 PM",
			"1:00 PM - 3:00 PM",
			"3:00 PM - 5:00 PM",
			"5:00 PM - 7:00 PM",
			"7:00 PM - 9:00 PM",
		},
	}
}
