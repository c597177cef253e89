package weather

// ImageOther is the image used for condition descriptions without a dedicated entry.
const ImageOther = "other"

// conditionImages maps WeatherAPI condition descriptions to image identifiers.
var conditionImages = map[string]string{
	"Partly cloudy":                       "partlycloudy",
	"Moderate rain":                       "moderaterain",
	"Patchy rain possible":                "moderaterain",
	"Sunny":                               "sun",
	"Light rain shower":                   "lightrainshower",
	"Clear":                               "sun",
	"Overcast":                            "cloud",
	"Cloudy":                              "cloud",
	"Light rain":                          "lightrainshower",
	"Moderate rain at times":              "moderaterain",
	"Heavy rain":                          "heavyrain",
	"Heavy rain at times":                 "heavyrain",
	"Moderate or heavy freezing rain":     "heavyrain",
	"Moderate or heavy rain shower":       "heavyrain",
	"Moderate or heavy rain with thunder": "heavyrain",
	"Mist":                                "mist",
	ImageOther:                            "moderaterain",
}

// ImageFor returns the image identifier for a condition description.
// Unknown or empty descriptions resolve to the ImageOther entry.
func ImageFor(condition string) string {
	if img, ok := conditionImages[condition]; ok {
		return img
	}
	return conditionImages[ImageOther]
}
