package canvas

// Kind is the answer shape of a box.
type Kind string

const (
	FreeText    Kind = "text"
	MultiSelect Kind = "checks"
)

// Box describes one canvas section.
type Box struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Kind     Kind     `json:"kind"`
	Options  []string `json:"options,omitempty"`
	Examples string   `json:"examples"`
}

// Boxes are the nine sections in guided order.
var Boxes = []Box{
	{
		ID:       "segments",
		Title:    "CUSTOMER SEGMENTS",
		Question: "Who will buy your product?",
		Kind:     FreeText,
		Examples: "Market traders\nRestaurants\nFish processors",
	},
	{
		ID:       "value",
		Title:    "VALUE PROPOSITION",
		Question: "Why should they buy from YOU? What makes you special?",
		Kind:     FreeText,
		Examples: "Best quality rice\nAlways deliver on time\nFree delivery",
	},
	{
		ID:       "channels",
		Title:    "CHANNELS",
		Question: "How will customers get your product?",
		Kind:     MultiSelect,
		Options:  []string{"Farm gate pickup", "Delivery to customer", "Market stall", "Through middleman"},
		Examples: "Farm gate pickup\nDelivery to customer",
	},
	{
		ID:       "relationships",
		Title:    "CUSTOMER RELATIONSHIPS",
		Question: "How will you communicate with customers?",
		Kind:     FreeText,
		Examples: "Phone calls\nWhatsApp messages\nVisit them regularly",
	},
	{
		ID:       "revenue",
		Title:    "REVENUE STREAMS",
		Question: "How much will you charge? How will you receive payment?",
		Kind:     FreeText,
		Examples: "₦1,000 per kg of rice, cash on delivery",
	},
	{
		ID:       "resources",
		Title:    "KEY RESOURCES",
		Question: "What do you need to run your farm?",
		Kind:     MultiSelect,
		Options:  []string{"Land", "Pond(s)", "Equipment", "Seeds/Fingerlings", "Water supply", "Labor", "Capital/Money"},
		Examples: "Land\nSeeds/Fingerlings\nLabor\nCapital/Money",
	},
	{
		ID:       "activities",
		Title:    "KEY ACTIVITIES",
		Question: "What are your main daily/weekly activities?",
		Kind:     FreeText,
		Examples: "Planting, weeding, harvesting\nFeeding fish, checking water, harvesting",
	},
	{
		ID:       "partners",
		Title:    "KEY PARTNERS",
		Question: "Who are your important suppliers and helpers?",
		Kind:     FreeText,
		Examples: "Seed supplier\nFeed seller\nEquipment provider\nLaborers",
	},
	{
		ID:       "costs",
		Title:    "COST STRUCTURE",
		Question: "What are your main costs?",
		Kind:     FreeText,
		Examples: "Seeds ₦15,000\nFertilizer ₦24,000\nLabor ₦75,000\nTotal ₦162,000",
	},
}

// PrintOrder is the reading order of the printed canvas grid.
var PrintOrder = []string{
	"partners", "activities", "value", "relationships",
	"segments", "resources", "channels", "costs", "revenue",
}

// BoxCount is the number of boxes a complete canvas fills.
var BoxCount = len(Boxes)

// Lookup finds a box by id.
func Lookup(id string) (Box, int, bool) {
	for i, b := range Boxes {
		if b.ID == id {
			return b, i, true
		}
	}
	return Box{}, -1, false
}
