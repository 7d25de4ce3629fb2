package service

import "math"

// Magnus-Tetens approximation constants plus the ideal-gas conversion
// factor to g/m³.
const (
	magnusA    = 6.11
	magnusB    = 17.67
	magnusC    = 243.5
	vaporConst = 2.1674
)

// AbsoluteHumidity derives the mass of water vapor per unit volume of air
// (g/m³) from temperature (°C) and relative humidity (%). The function is
// deterministic and does no range checking: out-of-physical-range inputs
// produce mathematically valid but meaningless outputs.
func AbsoluteHumidity(temperature, relativeHumidity float64) float64 {
	// saturation vapor pressure (hPa)
	saturationVaporPressure := magnusA * math.Exp((magnusB*temperature)/(magnusC+temperature))
	return vaporConst * saturationVaporPressure * relativeHumidity / (273.15 + temperature)
}
