package layout

// primitives are the scalar C types that can be initialized with a cast of 0.
var primitives = map[string]bool{
	"int8_t":    true,
	"uint8_t":   true,
	"int16_t":   true,
	"uint16_t":  true,
	"int32_t":   true,
	"uint32_t":  true,
	"int64_t":   true,
	"uint64_t":  true,
	"float":     true,
	"double":    true,
	"bool":      true,
	"float_t":   true,
	"angle_t":   true,
	"floatms_t": true,
}

// IsPrimitive reports if typeName is a primitive scalar type.
func IsPrimitive(typeName string) bool {
	return primitives[typeName]
}
