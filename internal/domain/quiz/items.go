package quiz

import "strings"

// Label is one of the two answer choices.
type Label string

const (
	Farmer      Label = "FARMER"
	Agripreneur Label = "AGRIPRENEUR"
)

// Item is one statement to classify.
type Item struct {
	Text    string `json:"text"`
	Correct Label  `json:"correct"`
	Explain string `json:"explain"`
}

// Items is the fixed statement list, in presentation order.
var Items = []Item{
	{Text: "Checks market prices before planting", Correct: Agripreneur, Explain: "Agripreneurs research before they plant"},
	{Text: "Plants the same crop every year without checking demand", Correct: Farmer, Explain: "Agripreneurs check what customers want first"},
	{Text: "Writes down all expenses in a notebook", Correct: Agripreneur, Explain: "Tracking costs is key to knowing your profit"},
	{Text: "Sells to whoever shows up at the farm", Correct: Farmer, Explain: "Agripreneurs find customers before harvesting"},
	{Text: "Calculates expected profit before starting", Correct: Agripreneur, Explain: "Planning for profit is business thinking"},
	{Text: "Hopes for a good price at harvest time", Correct: Farmer, Explain: "Agripreneurs know their price in advance"},
	{Text: "Tries new methods to improve production", Correct: Agripreneur, Explain: "Agripreneurs always learn and improve"},
	{Text: "Does farming the same way as parents did", Correct: Farmer, Explain: "Learning new methods helps you grow"},
	{Text: "Has a list of customers ready before planting", Correct: Agripreneur, Explain: "Know your buyers before you grow"},
	{Text: "Thinks of the farm as a business", Correct: Agripreneur, Explain: "This is the agripreneur mindset!"},
}

// Bucket maps an inclusive score range to a results message.
type Bucket struct {
	Min     int
	Max     int
	Message string
}

// Buckets are checked in order; the first containing the score wins.
var Buckets = []Bucket{
	{Min: 10, Max: 10, Message: "Amazing! You already think like an agripreneur!"},
	{Min: 7, Max: 9, Message: "Great job! You're well on your way to agripreneur thinking!"},
	{Min: 4, Max: 6, Message: "Good start! Keep learning and your mindset will transform!"},
	{Min: 0, Max: 3, Message: "Don't worry! This module will help you think like an agripreneur. Try again!"},
}

// FallbackMessage is shown if no bucket matches.
const FallbackMessage = "Nice work!"

// ResultMessage picks the results message for score.
func ResultMessage(score int) string {
	for _, b := range Buckets {
		if score >= b.Min && score <= b.Max {
			return b.Message
		}
	}
	return FallbackMessage
}

// ParseLabel accepts a choice label case-insensitively.
func ParseLabel(s string) (Label, bool) {
	switch Label(strings.ToUpper(strings.TrimSpace(s))) {
	case Farmer:
		return Farmer, true
	case Agripreneur:
		return Agripreneur, true
	}
	return "", false
}
