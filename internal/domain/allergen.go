package domain

// Allergen category names as shown to users. The category labels are Turkish
// because the UI is Turkish, but every category carries both Turkish and
// English derivative terms since the recipe dataset is bilingual.
const (
	AllergenDairy    = "Süt"
	AllergenEgg      = "Yumurta"
	AllergenNuts     = "Fındık/Fıstık"
	AllergenSeafood  = "Deniz Ürünleri"
	AllergenGluten   = "Gluten"
	AllergenSoy      = "Soya"
	AllergenCelery   = "Kereviz"
	AllergenMustard  = "Hardal"
	AllergenSesame   = "Susam"
)

// allergenDerivatives maps an allergen category to its derivative ingredient
// terms. All terms are lowercase; lookups are case-insensitive. A recognized
// category never has an empty term set.
var allergenDerivatives = map[string][]string{
	AllergenDairy: {
		// Turkish
		"süt", "krema", "peynir", "yoğurt", "tereyağı", "kaymak", "labne",
		"lor", "çökelek", "ayran", "kefir", "beyaz peynir", "kaşar",
		"tulum peyniri", "hellim", "mascarpone", "ricotta", "mozzarella",
		"parmesan", "cheddar", "brie", "camembert", "feta",
		// English
		"milk", "cream", "cheese", "yogurt", "butter", "dairy", "whey",
		"casein", "lactose", "ghee", "sour cream", "cottage cheese",
		"cream cheese", "buttermilk", "condensed milk", "evaporated milk",
	},
	AllergenEgg: {
		"yumurta", "yumurta sarısı", "yumurta akı", "mayonez",
		"egg", "eggs", "egg yolk", "egg white", "mayonnaise", "mayo",
		"meringue", "albumin", "globulin", "lysozyme", "lecithin",
	},
	AllergenNuts: {
		"fındık", "fıstık", "ceviz", "badem", "antep fıstığı", "kaju",
		"yer fıstığı", "çam fıstığı", "pekan", "hindistan cevizi",
		"fındık ezmesi", "badem ezmesi", "fıstık ezmesi",
		"nut", "nuts", "peanut", "peanuts", "hazelnut", "walnut", "almond",
		"pistachio", "cashew", "pine nut", "pecan", "macadamia", "chestnut",
		"coconut", "nut butter", "almond butter", "peanut butter",
		"nutella", "praline", "marzipan",
	},
	AllergenSeafood: {
		"balık", "karides", "midye", "istiridye", "ıstakoz", "yengeç",
		"kalamar", "ahtapot", "levrek", "çipura", "somon", "ton balığı",
		"hamsi", "sardalya", "uskumru", "palamut", "lüfer", "mezgit",
		"kabuklular", "yumuşakçalar", "balık sosu", "balık yağı",
		"fish", "seafood", "shrimp", "prawn", "lobster", "crab", "mussel",
		"oyster", "clam", "squid", "octopus", "salmon", "tuna", "cod",
		"anchovy", "sardine", "mackerel", "bass", "trout", "halibut",
		"scallop", "shellfish", "crustacean", "fish sauce", "fish oil",
		"caviar", "roe",
	},
	AllergenGluten: {
		"buğday", "un", "makarna", "ekmek", "simit", "poğaça", "börek",
		"pide", "lahmacun", "gözleme", "yufka", "kadayıf", "baklava",
		"erişte", "bulgur", "irmik", "arpa", "çavdar", "yulaf",
		"galeta unu", "kraker", "bisküvi", "kek", "kurabiye", "mantı",
		"wheat", "flour", "bread", "pasta", "noodle", "spaghetti",
		"macaroni", "lasagna", "couscous", "semolina",
		"barley", "rye", "oat", "oats", "breadcrumbs", "crouton",
		"cracker", "biscuit", "cookie", "cake", "pastry", "pie crust",
		"seitan", "beer", "malt",
	},
	AllergenSoy: {
		"soya", "soya sosu", "tofu", "edamame", "soya fasulyesi",
		"soya sütü", "miso", "tempeh", "soya unu", "soya yağı",
		"soy", "soybean", "soy sauce", "soy milk", "soy protein",
		"soy lecithin", "soy flour", "soy oil", "textured vegetable protein",
	},
	AllergenCelery: {
		"kereviz", "kereviz sapı", "kereviz kökü",
		"celery", "celeriac", "celery salt", "celery seed",
	},
	AllergenMustard: {
		"hardal", "hardal tohumu", "hardal sosu",
		"mustard", "mustard seed", "dijon", "mustard powder",
	},
	AllergenSesame: {
		"susam", "tahin", "susam yağı",
		"sesame", "sesame seed", "tahini", "sesame oil", "halvah",
	},
}

// AllergenCategories returns the list of recognized allergen categories.
func AllergenCategories() []string {
	categories := make([]string, 0, len(allergenDerivatives))
	for category := range allergenDerivatives {
		categories = append(categories, category)
	}
	return categories
}

// AllergenDerivatives returns the derivative terms for a category, or nil for
// an unrecognized category.
func AllergenDerivatives(category string) []string {
	return allergenDerivatives[category]
}

// AllAllergenDerivatives returns the union of derivative terms across the
// given categories as a set.
func AllAllergenDerivatives(categories []string) map[string]struct{} {
	union := make(map[string]struct{})
	for _, category := range categories {
		for _, term := range allergenDerivatives[category] {
			union[term] = struct{}{}
		}
	}
	return union
}
