package seed

var firstNames = []string{
	"John", "Jane", "Bob", "Alice", "Mike", "Sarah", "David", "Emma", "Chris", "Lisa",
	"Tom", "Anna", "James", "Mary", "Robert", "Jennifer", "William", "Linda", "Richard", "Patricia",
	"Charles", "Barbara", "Joseph", "Elizabeth", "Thomas", "Susan", "Daniel", "Jessica", "Matthew", "Karen",
	"Anthony", "Nancy", "Mark", "Betty", "Donald", "Helen", "Steven", "Sandra", "Paul", "Donna",
	"Andrew", "Carol", "Joshua", "Ruth", "Kenneth", "Sharon", "Kevin", "Michelle", "Brian", "Laura",
	"George", "Timothy", "Kimberly", "Ronald", "Deborah", "Jason", "Dorothy", "Edward", "Jeffrey", "Ryan",
	"Jacob", "Gary", "Nicholas", "Eric", "Jonathan", "Stephen", "Larry", "Justin",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	"Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter", "Roberts",
}

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego",
	"Dallas", "San Jose", "Austin", "Jacksonville", "San Francisco", "Columbus", "Charlotte", "Fort Worth",
	"Indianapolis", "Seattle", "Denver", "Boston", "El Paso", "Detroit", "Nashville", "Portland",
	"Memphis", "Oklahoma City", "Las Vegas", "Louisville", "Baltimore", "Milwaukee", "Albuquerque", "Tucson",
	"Fresno", "Sacramento", "Mesa", "Kansas City", "Atlanta", "Long Beach", "Colorado Springs", "Raleigh",
	"Miami", "Virginia Beach", "Omaha", "Oakland", "Minneapolis", "Tulsa", "Arlington", "Tampa",
}

type category struct {
	name     string
	products []string
}

var categories = []category{
	{name: "Electronics", products: []string{
		"Laptop", "Smartphone", "Tablet", "Smartwatch", "Headphones", "Wireless Earbuds", "Gaming Console",
		"Monitor", "Keyboard", "Mouse", "Webcam", "Microphone", "Router", "Hard Drive", "SSD",
		"Graphics Card", "Motherboard", "RAM", "Power Supply", "Cooling Fan",
	}},
	{name: "Home & Kitchen", products: []string{
		"Coffee Maker", "Blender", "Toaster", "Microwave", "Air Fryer", "Slow Cooker", "Food Processor",
		"Stand Mixer", "Rice Cooker", "Pressure Cooker", "Vacuum Cleaner", "Air Purifier", "Humidifier",
		"Dehumidifier", "Space Heater", "Fan", "Lamp", "Curtains", "Pillow", "Bedsheet Set",
	}},
	{name: "Sports", products: []string{
		"Running Shoes", "Basketball", "Soccer Ball", "Tennis Racket", "Golf Clubs", "Yoga Mat",
		"Dumbbells", "Resistance Bands", "Treadmill", "Exercise Bike", "Protein Powder", "Water Bottle",
		"Gym Bag", "Fitness Tracker", "Swimming Goggles", "Bicycle Helmet", "Skateboard", "Football",
		"Baseball Glove", "Hiking Boots",
	}},
	{name: "Books", products: []string{
		"Fiction Novel", "Science Textbook", "Cookbook", "Biography", "Self-Help Book", "History Book",
		"Art Book", "Programming Guide", "Language Learning", "Travel Guide", "Poetry Collection",
		"Mystery Novel", "Romance Novel", "Fantasy Novel", "Science Fiction", "Thriller", "Horror Novel",
		"Philosophy Book", "Psychology Book", "Business Book",
	}},
	{name: "Clothing", products: []string{
		"T-Shirt", "Jeans", "Dress", "Sweater", "Jacket", "Sneakers", "Boots", "Sandals", "Hat",
		"Scarf", "Gloves", "Socks", "Underwear", "Pajamas", "Swimsuit", "Suit", "Tie", "Belt",
		"Sunglasses", "Watch",
	}},
	{name: "Beauty", products: []string{
		"Shampoo", "Conditioner", "Face Cream", "Sunscreen", "Lipstick", "Foundation", "Mascara",
		"Perfume", "Nail Polish", "Hair Dryer", "Straightener", "Curling Iron", "Moisturizer",
		"Cleanser", "Serum", "Toner", "Exfoliator", "Face Mask", "Eye Cream", "Body Lotion",
	}},
	{name: "Automotive", products: []string{
		"Car Tire", "Motor Oil", "Car Battery", "Brake Pads", "Air Filter", "Spark Plugs",
		"Car Wax", "Car Cover", "Floor Mats", "Seat Covers", "Dash Cam", "GPS Navigator",
		"Car Charger", "Phone Mount", "Jumper Cables", "Emergency Kit", "Tire Pressure Gauge",
		"Car Vacuum", "Cleaning Supplies", "Tool Kit",
	}},
	{name: "Toys", products: []string{
		"Action Figure", "Doll", "Board Game", "Puzzle", "LEGO Set", "Stuffed Animal", "RC Car",
		"Drone", "Video Game", "Trading Cards", "Art Supplies", "Musical Instrument", "Building Blocks",
		"Educational Toy", "Outdoor Toy", "Bath Toy", "Electronic Toy", "Craft Kit", "Science Kit",
		"Model Kit",
	}},
}

var orderStatuses = []string{"pending", "processing", "shipped", "delivered", "completed", "cancelled"}
