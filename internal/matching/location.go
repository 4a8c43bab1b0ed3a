package matching

import "strings"

// TunisianLocations are lowercase fragments identifying a Tunisian city,
// governorate or the country itself.
var TunisianLocations = []string{
	"tunis", "sfax", "sousse", "kairouan", "bizerte",
	"gabes", "ariana", "gafsa", "monastir", "ben arous", "kasserine",
	"medenine", "nabeul", "tataouine", "beja", "jendouba", "mahdia",
	"sidi bouzid", "tozeur", "siliana", "zaghouan", "kebili", "manouba",
	"la marsa", "hammamet", "djerba", "tunisia", "tunisie",
}

// FrenchSpeakingLocations are lowercase fragments identifying a
// French-speaking country or city.
var FrenchSpeakingLocations = []string{
	"france", "paris", "lyon", "marseille", "belgium",
	"bruxelles", "brussels", "canada", "montreal", "quebec", "switzerland",
	"geneve", "geneva", "luxembourg", "senegal", "dakar", "morocco",
	"casablanca", "rabat", "algeria", "alger",
}

// LanguageScore approximates language compatibility from the two locations.
// Rules are evaluated in order and the first match wins.
func LanguageScore(profileLocation, jobLocation string) float64 {
	profileLoc, jobLoc, ok := normalizeLocations(profileLocation, jobLocation)
	if !ok {
		return 70
	}

	if profileLoc == jobLoc {
		return 100
	}

	profileTN := IsTunisianLocation(profileLoc)
	jobTN := IsTunisianLocation(jobLoc)

	if profileTN && jobTN {
		return 90
	}

	if profileTN != jobTN {
		if IsFrenchSpeakingLocation(profileLoc) && IsFrenchSpeakingLocation(jobLoc) {
			return 80
		}
		return 50
	}

	return 60
}

// LocationScore rates geographic proximity: exact match, containment, or neither.
func LocationScore(profileLocation, jobLocation string) float64 {
	profileLoc, jobLoc, ok := normalizeLocations(profileLocation, jobLocation)
	if !ok {
		return 50
	}

	if profileLoc == jobLoc {
		return 100
	}

	if strings.Contains(profileLoc, jobLoc) || strings.Contains(jobLoc, profileLoc) {
		return 80
	}

	return 40
}

func IsTunisianLocation(location string) bool {
	return containsAny(strings.ToLower(location), TunisianLocations)
}

func IsFrenchSpeakingLocation(location string) bool {
	return containsAny(strings.ToLower(location), FrenchSpeakingLocations)
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

// normalizeLocations lowercases and trims both locations. ok is false when
// either one is blank.
func normalizeLocations(a, b string) (string, string, bool) {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return a, b, false
	}
	return a, b, true
}
