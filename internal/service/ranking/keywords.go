package ranking

// categoryRule tags an item with Name when any keyword appears in its text
type categoryRule struct {
	Name     string
	Keywords []string
}

// categoryRules are evaluated in this order, which is also the output order
var categoryRules = []categoryRule{
	{Name: "breaking", Keywords: []string{"breaking", "urgent", "just in", "developing", "alert"}},
	{Name: "politics", Keywords: []string{"election", "vote", "governor", "senator", "legislation", "politic", "campaign", "mayor", "council"}},
	{Name: "crime", Keywords: []string{"police", "arrest", "crime", "shooting", "murder", "robbery", "theft", "suspect", "homicide"}},
	{Name: "traffic", Keywords: []string{"traffic", "accident", "crash", "road closure", "highway", "congestion", "detour"}},
	{Name: "weather", Keywords: []string{"weather", "storm", "rain", "snow", "forecast", "temperature", "flood", "hurricane", "tornado"}},
	{Name: "business", Keywords: []string{"business", "economy", "company", "jobs", "market", "restaurant", "retail", "startup"}},
	{Name: "sports", Keywords: []string{"sports", "game", "team", "championship", "playoff", "football", "baseball", "basketball", "soccer"}},
	{Name: "events", Keywords: []string{"festival", "concert", "event", "celebration", "parade", "fair", "exhibition"}},
	{Name: "education", Keywords: []string{"school", "education", "student", "teacher", "university", "college", "campus"}},
	{Name: "health", Keywords: []string{"health", "hospital", "covid", "vaccine", "medical", "disease", "clinic"}},
	{Name: "transportation", Keywords: []string{"transit", "bus", "train", "metro", "airport", "light rail", "subway"}},
	{Name: "development", Keywords: []string{"construction", "development", "housing", "zoning", "infrastructure", "renovation"}},
	{Name: "community", Keywords: []string{"community", "neighborhood", "volunteer", "charity", "nonprofit", "residents"}},
}

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "success",
	"win", "celebrate", "improve", "growth", "benefit", "positive",
	"achievement", "award", "honor", "progress", "opportunity", "help",
	"support", "hope", "rescue", "thrive",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "crisis", "disaster", "death",
	"killed", "injured", "violence", "shooting", "fire", "accident",
	"crash", "problem", "concern", "fail", "loss", "decline",
	"danger", "threat", "attack", "scandal",
}

// Impact tiers, checked high to low; the first tier with a hit sets the base
var (
	highImpactKeywords = []string{
		"emergency", "breaking", "fire", "shooting", "evacuation",
		"death", "killed", "explosion", "lockdown", "amber alert",
	}
	mediumImpactKeywords = []string{
		"police", "arrest", "accident", "crash", "storm",
		"closure", "election", "council", "outage", "investigation",
	}
	lowImpactKeywords = []string{
		"sports", "festival", "concert", "restaurant", "community",
		"event", "celebration", "opening", "museum", "music",
	}
)

// authoritativeSourceMarkers identify official or government outlets
var authoritativeSourceMarkers = []string{"gov", "official", "city"}

// Categories returns the names of all known categories in evaluation order
func Categories() []string {
	names := make([]string, 0, len(categoryRules))
	for _, r := range categoryRules {
		names = append(names, r.Name)
	}
	return names
}
