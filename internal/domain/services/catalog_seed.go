package services

// sampleCatalog is inserted by SeedIfEmpty on a fresh database
var sampleCatalog = []ProductInput{
	{
		Name:             "Cotton Nightwear Set - Moon & Stars",
		Description:      "Soft cotton nightwear featuring adorable moon and stars pattern. Perfect for peaceful bedtime adventures.",
		Price:            "29.99",
		Category:         "nightwear",
		Sizes:            []string{"2T", "3T", "4T", "5T"},
		Colors:           []string{"Blue", "Pink", "Yellow"},
		Images:           []string{"nightwear1.jpg", "nightwear2.jpg"},
		StockQuantity:    50,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Machine wash cold, tumble dry low",
	},
	{
		Name:             "Ikkat Print Pajamas",
		Description:      "Traditional Ikkat pattern nightwear made from pure cotton. Comfortable and stylish for little ones.",
		Price:            "34.99",
		Category:         "nightwear",
		Sizes:            []string{"2T", "3T", "4T", "5T", "6T"},
		Colors:           []string{"Red", "Green", "Purple"},
		Images:           []string{"ikat1.jpg", "ikat2.jpg"},
		StockQuantity:    35,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Hand wash cold, air dry",
	},
	{
		Name:             "Boys Cotton T-Shirt - Dinosaur",
		Description:      "Fun dinosaur print t-shirt made from soft cotton. Perfect for active little boys.",
		Price:            "19.99",
		Category:         "boys",
		Sizes:            []string{"2T", "3T", "4T", "5T"},
		Colors:           []string{"Blue", "Green", "Red"},
		Images:           []string{"dino1.jpg", "dino2.jpg"},
		StockQuantity:    40,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Machine wash cold, tumble dry low",
	},
	{
		Name:             "Boys Shorts - Adventure",
		Description:      "Comfortable cotton shorts with adventure-themed prints. Great for outdoor play.",
		Price:            "24.99",
		Category:         "boys",
		Sizes:            []string{"2T", "3T", "4T", "5T"},
		Colors:           []string{"Khaki", "Navy", "Olive"},
		Images:           []string{"shorts1.jpg", "shorts2.jpg"},
		StockQuantity:    30,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Machine wash cold, tumble dry low",
	},
	{
		Name:             "Girls Dress - Floral Garden",
		Description:      "Beautiful floral print dress perfect for special occasions. Made from soft, breathable cotton.",
		Price:            "39.99",
		Category:         "girls",
		Sizes:            []string{"2T", "3T", "4T", "5T", "6T"},
		Colors:           []string{"Pink", "Lavender", "Yellow"},
		Images:           []string{"dress1.jpg", "dress2.jpg"},
		StockQuantity:    25,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Hand wash cold, air dry",
	},
	{
		Name:             "Girls Top - Butterfly",
		Description:      "Adorable butterfly print top with comfortable fit. Ideal for everyday wear.",
		Price:            "22.99",
		Category:         "girls",
		Sizes:            []string{"2T", "3T", "4T", "5T"},
		Colors:           []string{"Pink", "Blue", "Purple"},
		Images:           []string{"top1.jpg", "top2.jpg"},
		StockQuantity:    45,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Machine wash cold, tumble dry low",
	},
	{
		Name:             "Festive Collection - Diwali Special",
		Description:      "Special festive wear with traditional Indian designs. Perfect for celebrations.",
		Price:            "49.99",
		Category:         "new-arrivals",
		Sizes:            []string{"2T", "3T", "4T", "5T", "6T"},
		Colors:           []string{"Gold", "Red", "Green"},
		Images:           []string{"festive1.jpg", "festive2.jpg"},
		StockQuantity:    20,
		Brand:            "Hugscape",
		Material:         "Silk Blend",
		CareInstructions: "Dry clean recommended",
	},
	{
		Name:             "Summer Collection - Beach Ready",
		Description:      "Lightweight summer wear perfect for beach days and outdoor activities.",
		Price:            "27.99",
		Category:         "new-arrivals",
		Sizes:            []string{"2T", "3T", "4T", "5T"},
		Colors:           []string{"White", "Blue", "Yellow"},
		Images:           []string{"summer1.jpg", "summer2.jpg"},
		StockQuantity:    30,
		Brand:            "Hugscape",
		Material:         "100% Cotton",
		CareInstructions: "Machine wash cold, air dry",
	},
}
