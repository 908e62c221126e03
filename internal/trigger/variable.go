package trigger

// VariableFamily identifies a climate variable backed by a gridded dataset.
type VariableFamily string

const (
	VariablePrecipitation VariableFamily = "precipitation"
	VariableTempMax       VariableFamily = "temp_max"
	VariableTempMin       VariableFamily = "temp_min"
	VariableTempMean      VariableFamily = "temp_mean"
	VariableWind          VariableFamily = "wind"
	VariableLightning     VariableFamily = "lightning"
	VariableNDVI          VariableFamily = "ndvi"
)

// Direction is the side of the threshold a trigger fires on.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// fixedDirections pins the comparison for families where only one direction
// makes physical sense. A caller asking for the opposite is a mistake, not
// a preference.
var fixedDirections = map[VariableFamily]Direction{
	VariablePrecipitation: DirectionAbove,
	VariableWind:          DirectionAbove,
	VariableLightning:     DirectionAbove,
	VariableTempMax:       DirectionAbove,
	VariableTempMin:       DirectionBelow,
}

// defaultDirections applies when the caller leaves the direction unset for
// a family that accepts either. temp_mean and ndvi default to below: cold
// spells and vegetation stress are the usual questions.
var defaultDirections = map[VariableFamily]Direction{
	VariableTempMean: DirectionBelow,
	VariableNDVI:     DirectionBelow,
}

var variableUnits = map[VariableFamily]string{
	VariablePrecipitation: "mm",
	VariableTempMax:       "°C",
	VariableTempMin:       "°C",
	VariableTempMean:      "°C",
	VariableWind:          "km/h",
	VariableLightning:     "flashes/km²",
	VariableNDVI:          "",
}

// Variables lists every supported family, in a stable order.
func Variables() []VariableFamily {
	return []VariableFamily{
		VariablePrecipitation,
		VariableTempMax,
		VariableTempMin,
		VariableTempMean,
		VariableWind,
		VariableLightning,
		VariableNDVI,
	}
}

func (v VariableFamily) Valid() bool {
	_, fixed := fixedDirections[v]
	_, free := defaultDirections[v]
	return fixed || free
}

// Unit returns the display unit for the family, empty for dimensionless
// indices.
func (v VariableFamily) Unit() string {
	return variableUnits[v]
}

// ResolveDirection is the single source of truth for trigger directionality.
// requested may be empty, meaning the caller has no preference. An explicit
// request that contradicts a fixed-direction family fails with
// InvalidDirectionError rather than being silently overridden.
func ResolveDirection(variable VariableFamily, requested Direction) (Direction, error) {
	if !variable.Valid() {
		return "", &ValidationError{Reason: "unknown variable family: " + string(variable)}
	}
	if requested != "" && requested != DirectionAbove && requested != DirectionBelow {
		return "", &ValidationError{Reason: "unknown direction: " + string(requested)}
	}

	if fixed, ok := fixedDirections[variable]; ok {
		if requested != "" && requested != fixed {
			return "", &InvalidDirectionError{Variable: variable, Requested: requested, Fixed: fixed}
		}
		return fixed, nil
	}

	if requested != "" {
		return requested, nil
	}
	return defaultDirections[variable], nil
}
