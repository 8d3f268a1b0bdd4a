package tui

import (
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/muesli/termenv"
)

// Link colors by data type, matching the graph UI palette.
var dataTypeColors = map[domain.DataType]string{
	domain.DataTypeGeneral:  "#cfcfcf",
	domain.DataTypeRaster:   "#e4bb72",
	domain.DataTypeColor:    "#ce6ea7",
	domain.DataTypeNumber:   "#cbbab4",
	domain.DataTypeVector:   "#65bbe5",
	domain.DataTypeBoolean:  "#7dc267",
	domain.DataTypeVec2:     "#8ebeb1",
	domain.DataTypeGraphic:  "#66b195",
	domain.DataTypeArtboard: "#fbf39a",
}

// DataTypeColor returns the hex color for dt, or the general color for
// unknown tags.
func DataTypeColor(dt domain.DataType) string {
	if c, ok := dataTypeColors[dt]; ok {
		return c
	}
	return dataTypeColors[domain.DataTypeGeneral]
}

// Styled renders text in the color of dt using profile p.
func Styled(p termenv.Profile, dt domain.DataType, text string) string {
	return p.String(text).Foreground(p.Color(DataTypeColor(dt))).String()
}
