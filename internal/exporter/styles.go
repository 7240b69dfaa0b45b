package exporter

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// reportStyles holds the style IDs registered against one workbook. Style
// IDs are workbook-scoped, so a fresh set is built for every report.
type reportStyles struct {
	file *excelize.File

	teamSummary     int
	summaryTotals   int
	mainHeader      int
	totalsRow       int
	inProgressHead  int
	memberHead      int
	memberColumns   int
	memberSummary   int

	itemTypeFills map[string]int
}

func newReportStyles(f *excelize.File) (*reportStyles, error) {
	s := &reportStyles{file: f, itemTypeFills: make(map[string]int)}

	var err error
	s.teamSummary, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: solidFill("FFE6F3FF"),
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	s.summaryTotals, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      solidFill("FFFFFF00"),
		Border:    borderAll("thick"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	s.mainHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      solidFill("FF4472C4"),
		Border:    borderAll("medium"),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	s.totalsRow, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	s.inProgressHead, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      solidFill("FFFFA500"),
		Border:    borderAll("medium"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	s.memberHead, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      solidFill("FF4F8A10"),
		Border:    borderAll("medium"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	s.memberColumns, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   solidFill("FFE6F3FF"),
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	s.memberSummary, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: solidFill("FFFFFFCC"),
		Border: []excelize.Border{
			{Type: "top", Style: 6, Color: "000000"},
		},
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// itemTypeFill returns a cached fill style for the given item type's colour,
// registering it on first use. Types without a dedicated colour get none.
func (s *reportStyles) itemTypeFill(itemType string) (int, bool) {
	color := itemTypeColor(itemType)
	if color == "" {
		return 0, false
	}
	if id, ok := s.itemTypeFills[color]; ok {
		return id, true
	}
	id, err := s.file.NewStyle(&excelize.Style{Fill: solidFill(color)})
	if err != nil {
		return 0, false
	}
	s.itemTypeFills[color] = id
	return id, true
}

// itemTypeColor maps a display item type to its ARGB highlight colour.
func itemTypeColor(itemType string) string {
	switch strings.ToUpper(strings.TrimSpace(itemType)) {
	case "BUG":
		return "FFFF9999"
	case "NEW REQUEST":
		return "FF99FF99"
	case "PLANNED":
		return "FF99CCFF"
	case "MEETING", "MEETINGS", "DAILY STAND-UP":
		return "FFFFFF99"
	case "TASK":
		return "FFD1B3FF"
	case "STORY":
		return "FF99E6FF"
	case "HOT FIX", "HOTFIX":
		return "FFFFB366"
	case "ENHANCEMENT":
		return "FF99FFFF"
	default:
		return ""
	}
}

func solidFill(argb string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{argb}}
}

func thinBorder() []excelize.Border {
	return borderAll("thin")
}

// borderAll builds a uniform four-sided border. Style values follow the
// excelize border index table.
func borderAll(weight string) []excelize.Border {
	style := 1
	switch weight {
	case "medium":
		style = 2
	case "thick":
		style = 5
	}
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Style: style, Color: "000000"})
	}
	return borders
}
