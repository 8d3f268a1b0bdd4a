package domain

// DataType is the coarse classification of values shown by the graph UI.
// It drives link color-coding and compatibility hints, not type checking.
type DataType string

const (
	DataTypeGeneral  DataType = "general"
	DataTypeRaster   DataType = "raster"
	DataTypeColor    DataType = "color"
	DataTypeNumber   DataType = "number" // numbers and text share a color
	DataTypeVector   DataType = "vector" // vector path data
	DataTypeBoolean  DataType = "boolean"
	DataTypeVec2     DataType = "vec2" // the mathematical vector
	DataTypeGraphic  DataType = "graphic"
	DataTypeArtboard DataType = "artboard"
)

// DataTypes lists every tag in display order.
var DataTypes = []DataType{
	DataTypeGeneral,
	DataTypeRaster,
	DataTypeColor,
	DataTypeNumber,
	DataTypeVector,
	DataTypeBoolean,
	DataTypeVec2,
	DataTypeGraphic,
	DataTypeArtboard,
}

// DataTypeOf classifies a value.
func DataTypeOf(v TaggedValue) DataType {
	switch v.(type) {
	case String, Number, Uint, Affine:
		return DataTypeNumber
	case Bool:
		return DataTypeBoolean
	case Vec2, IVec2:
		return DataTypeVec2
	case Image, ImageFrame:
		return DataTypeRaster
	case Color:
		return DataTypeColor
	case VectorData:
		return DataTypeVector
	case GraphicGroup:
		return DataTypeGraphic
	case Artboard:
		return DataTypeArtboard
	default:
		return DataTypeGeneral
	}
}
