package canvas

import (
	"strings"
	"time"
)

// SheetBox is one printed cell.
type SheetBox struct {
	ID    string `json:"id"`
	Area  string `json:"area"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sheet is the printable canvas.
type Sheet struct {
	BusinessName string     `json:"business_name"`
	UserName     string     `json:"user_name"`
	Date         string     `json:"date"`
	Boxes        []SheetBox `json:"boxes"`
}

// DateLayout formats the print date.
const DateLayout = "2 January 2006"

func buildSheet(s State, now time.Time) Sheet {
	sh := Sheet{
		BusinessName: s.BusinessName,
		UserName:     orDash(s.UserName),
		Date:         now.Format(DateLayout),
		Boxes:        make([]SheetBox, 0, len(PrintOrder)),
	}
	for _, id := range PrintOrder {
		title := strings.ToUpper(id)
		if box, _, ok := Lookup(id); ok {
			title = box.Title
		}
		sh.Boxes = append(sh.Boxes, SheetBox{
			ID:    id,
			Area:  id,
			Title: title,
			Body:  orDash(strings.TrimSpace(s.Boxes[id].String())),
		})
	}
	return sh
}
