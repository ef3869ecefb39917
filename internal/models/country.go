package models

// Country is an ISO 3166-1 alpha-2 code of a server location
type Country string

var countryNames = map[Country]string{
	"RU": "Russia",
	"NL": "Netherlands",
	"IL": "Israel",
	"CZ": "Czechia",
	"RO": "Romania",
	"PT": "Portugal",
	"RS": "Serbia",
	"GB": "United Kingdom",
	"CA": "Canada",
	"SK": "Slovakia",
	"TR": "Turkey",
	"IT": "Italy",
	"SE": "Sweden",
	"IE": "Ireland",
	"LT": "Lithuania",
	"NO": "Norway",
	"JP": "Japan",
	"DE": "Germany",
	"LV": "Latvia",
	"US": "United States",
	"PL": "Poland",
	"FI": "Finland",
	"CH": "Switzerland",
	"FR": "France",
	"EE": "Estonia",
	"BE": "Belgium",
	"SI": "Slovenia",
	"HK": "Hong Kong",
	"MD": "Moldova",
	"UA": "Ukraine",
	"BG": "Bulgaria",
	"HU": "Hungary",
	"KZ": "Kazakhstan",
	"ES": "Spain",
	"DK": "Denmark",
	"IS": "Iceland",
	"MK": "North Macedonia",
	"AT": "Austria",
	"BR": "Brazil",
	"AM": "Armenia",
	"HR": "Croatia",
}

// IsValid reports whether the country code is supported
func (c Country) IsValid() bool {
	_, ok := countryNames[c]
	return ok
}

// Description returns a human-readable country name
func (c Country) Description() string {
	if name, ok := countryNames[c]; ok {
		return name
	}
	return "No description"
}
