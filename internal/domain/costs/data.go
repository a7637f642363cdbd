package costs

// Domain names.
const (
	Rice = "rice"
	Fish = "fish"
)

// Item is one selectable cost.
type Item struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Dataset is one version of the calculator.
type Dataset struct {
	Label string
	Items []Item
}

// Datasets holds the built-in cost lists keyed by domain.
var Datasets = map[string]Dataset{
	Rice: {
		Label: "Rice Farming Costs",
		Items: []Item{
			{Name: "Land preparation", Value: 30000},
			{Name: "Seeds", Value: 15000},
			{Name: "Fertilizer", Value: 24000},
			{Name: "Herbicides/Pesticides", Value: 12000},
			{Name: "Labor - Planting", Value: 20000},
			{Name: "Labor - Weeding", Value: 30000},
			{Name: "Labor - Harvesting", Value: 25000},
			{Name: "Threshing", Value: 15000},
			{Name: "Drying", Value: 10000},
			{Name: "Transport", Value: 12000},
			{Name: "Bags/Packaging", Value: 6000},
			{Name: "Phone calls/Marketing", Value: 3000},
		},
	},
	Fish: {
		Label: "Fish Farming Costs",
		Items: []Item{
			{Name: "Pond construction/renovation", Value: 50000},
			{Name: "Pond preparation", Value: 15000},
			{Name: "Fingerlings (500 pieces)", Value: 25000},
			{Name: "Feed - Starter (Month 1)", Value: 40000},
			{Name: "Feed - Grower (Months 2-3)", Value: 80000},
			{Name: "Feed - Finisher (Month 4)", Value: 60000},
			{Name: "Medicine/Treatment", Value: 8000},
			{Name: "Water pump/Electricity", Value: 15000},
			{Name: "Labor - Feeding", Value: 20000},
			{Name: "Labor - Harvesting", Value: 15000},
			{Name: "Transport", Value: 10000},
			{Name: "Phone calls/Marketing", Value: 3000},
		},
	},
}
