package matching

// Domain names.
const (
	Rice = "rice"
	Fish = "fish"
)

// Customer is a drop zone.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Need is a draggable card; MatchTo names the customer it belongs to.
type Need struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	MatchTo string `json:"match_to"`
}

// Dataset is one version of the game.
type Dataset struct {
	Label     string
	Customers []Customer
	Needs     []Need
}

// Datasets holds the built-in versions keyed by domain.
var Datasets = map[string]Dataset{
	Rice: {
		Label: "Rice Customers",
		Customers: []Customer{
			{ID: "market_trader", Name: "Market Trader", Icon: "stall"},
			{ID: "hotel_restaurant", Name: "Hotel/Restaurant", Icon: "plate"},
			{ID: "rice_mill", Name: "Rice Mill", Icon: "factory"},
			{ID: "supermarket", Name: "Supermarket", Icon: "cart"},
		},
		Needs: []Need{
			{ID: "n1", Text: "Wants affordable price, pays cash immediately", MatchTo: "market_trader"},
			{ID: "n2", Text: "Wants consistent quality, pays weekly or monthly", MatchTo: "hotel_restaurant"},
			{ID: "n3", Text: "Wants large quantity of raw paddy, pays on delivery", MatchTo: "rice_mill"},
			{ID: "n4", Text: "Wants packaged product with label, pays in 30-60 days", MatchTo: "supermarket"},
		},
	},
	Fish: {
		Label: "Fish Customers",
		Customers: []Customer{
			{ID: "pepper_soup_joint", Name: "Pepper Soup Joint", Icon: "pot"},
			{ID: "restaurant", Name: "Restaurant", Icon: "building"},
			{ID: "market_seller", Name: "Market Seller", Icon: "woman"},
			{ID: "fish_processor", Name: "Fish Processor", Icon: "rack"},
		},
		Needs: []Need{
			{ID: "n1", Text: "Wants 1kg catfish, buys 2-3 times per week", MatchTo: "pepper_soup_joint"},
			{ID: "n2", Text: "Wants same size fish always, orders weekly", MatchTo: "restaurant"},
			{ID: "n3", Text: "Wants mixed sizes, pays cash", MatchTo: "market_seller"},
			{ID: "n4", Text: "Wants large volume any size", MatchTo: "fish_processor"},
		},
	},
}

// Other returns the domain the "other version" button switches to.
func Other(domain string) string {
	if domain == Rice {
		return Fish
	}
	return Rice
}
