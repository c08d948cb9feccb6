package services

// categoryKeywords is the single canonical keyword table, shared by the
// full classifier and the fast-path detector. Categories not listed here
// can still exist (auto-registered from user data); they simply carry no
// keyword signal until keywords are added.
var categoryKeywords = map[string][]string{
	"cricket": {
		"cricket", "cricketer", "wicket", "boundary", "innings",
		"ipl", "test match", "odi", "t20", "test cricket", "one day",
		"batting", "bowling", "batsman", "bowler", "wicketkeeper", "all-rounder", "fielder",
		"dhoni", "kohli", "rohit", "bumrah", "ashwin", "jadeja",
		"mumbai indians", "csk", "chennai super kings", "rcb",
		"world cup", "champions trophy", "asia cup",
		"wankhede", "eden gardens",
	},
	"football": {
		"football", "soccer", "fifa", "uefa", "goal", "penalty", "tackle",
		"premier league", "la liga", "champions league", "world cup", "euro",
		"messi", "ronaldo", "neymar", "mbappe", "haaland",
		"barcelona", "real madrid", "manchester united", "liverpool", "arsenal", "chelsea",
		"striker", "midfielder", "defender", "goalkeeper", "winger",
	},
	"sports": {
		"sports", "game", "match", "tournament", "championship", "league",
		"team", "player", "athlete", "coach", "training", "practice",
		"basketball", "tennis", "badminton", "volleyball", "hockey",
		"formula 1", "f1", "racing", "motorsport",
		"olympics", "medal", "competition", "trophy", "victory",
	},
	"technology": {
		"ai", "ml", "artificial intelligence", "machine learning", "deep learning",
		"python", "javascript", "java", "react", "node",
		"programming", "coding", "software", "developer", "engineer", "code",
		"api", "database", "mongodb", "postgresql", "sql",
		"cloud", "aws", "azure", "docker", "kubernetes", "devops",
		"neural network", "algorithm", "data science", "analytics",
		"web development", "mobile app", "frontend", "backend",
		"github", "git", "deployment",
	},
	"food": {
		"recipe", "cooking", "cuisine", "dish", "meal", "restaurant", "food",
		"pasta", "pizza", "biryani", "curry", "noodles", "rice", "bread",
		"italian", "chinese", "indian", "mexican", "thai", "japanese",
		"chef", "ingredient", "spice", "baking", "dessert",
		"vegan", "vegetarian", "diet",
	},
	"travel": {
		"travel", "tourism", "vacation", "holiday", "trip", "tour", "journey",
		"destination", "hotel", "flight", "booking", "resort", "backpacking",
		"paris", "rome", "london", "dubai", "bangkok", "delhi", "mumbai",
		"beach", "mountain", "hill station", "trekking", "hiking",
		"adventure", "camping", "safari", "sightseeing",
	},
	"fitness": {
		"yoga", "gym", "exercise", "workout", "fitness",
		"meditation", "pranayama", "asana", "mindfulness",
		"wellness", "health", "mental health",
		"weight loss", "muscle", "cardio", "strength", "bodybuilding",
		"running", "cycling", "swimming", "jogging",
	},
	"entertainment": {
		"movie", "film", "cinema", "actor", "actress", "director", "acting",
		"bollywood", "hollywood", "netflix",
		"music", "song", "album", "singer", "artist", "concert", "band",
		"series", "web series", "show", "amazon prime",
		"video game", "gaming", "esports", "ps5", "xbox",
	},
	"movies": {
		"movie", "film", "cinema", "actor", "director", "hollywood", "bollywood",
		"screenplay", "trailer", "box office", "blockbuster", "sequel",
	},
	"music": {
		"music", "song", "concert", "band", "album", "singer", "festival",
		"melody", "lyrics", "playlist", "guitar", "piano",
	},
	"education": {
		"study", "learning", "course", "tutorial", "education", "school",
		"university", "college", "exam", "student", "teacher",
		"mathematics", "science", "physics", "chemistry", "biology",
		"online course", "certification", "degree", "skill",
	},
	"business": {
		"business", "startup", "entrepreneur", "company", "corporate",
		"marketing", "sales", "management", "finance", "accounting",
		"investment", "stock", "market", "trading", "cryptocurrency",
		"leadership", "strategy", "innovation",
	},
	"health": {
		"fitness", "exercise", "diet", "nutrition", "wellness",
		"medical", "doctor", "hospital", "medicine", "therapy",
	},
	"fashion": {
		"fashion", "style", "clothing", "outfit", "designer", "trend",
		"beauty", "makeup", "skincare",
	},
	"productivity": {
		"productivity", "work from home", "wfh", "remote work",
		"time management", "organization", "planning", "goals", "habits",
		"efficiency", "focus",
	},
	"lifestyle": {
		"lifestyle", "living", "daily", "routine", "habits",
		"home", "decor", "interior", "furniture", "shopping",
	},
	"nature": {
		"nature", "environment", "wildlife", "animals", "forest",
		"trees", "plants", "garden", "flowers", "birds",
		"eco", "sustainability", "climate", "weather",
	},
}

// categoryAliases maps free-form labels (oracle output, user input) onto
// canonical category names.
var categoryAliases = map[string]string{
	"car race":          "sports",
	"racing":            "sports",
	"motorsport":        "sports",
	"formula 1":         "sports",
	"f1":                "sports",
	"trekking":          "travel",
	"hiking":            "travel",
	"adventure":         "travel",
	"backpacking":       "travel",
	"working from home": "productivity",
	"wfh":               "productivity",
	"remote work":       "productivity",
	"coding":            "technology",
	"programming":       "technology",
	"software":          "technology",
	"app":               "technology",
	"cooking":           "food",
	"recipe":            "food",
	"dish":              "food",
	"exercise":          "fitness",
	"gym":               "fitness",
	"workout":           "fitness",
}
