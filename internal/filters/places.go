package filters

var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD", "massachusetts": "MA",
	"michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO", "montana": "MT",
	"nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC", "washington dc": "DC", "washington d.c.": "DC",
}

var validStateCodes = func() map[string]struct{} {
	codes := make(map[string]struct{}, len(stateCodes))
	for _, code := range stateCodes {
		codes[code] = struct{}{}
	}
	return codes
}()

var countryAliases = map[string]string{
	"us": "united states", "usa": "united states", "u.s.": "united states", "u.s.a.": "united states",
	"united states": "united states", "united states of america": "united states", "america": "united states",
	"uk": "united kingdom", "u.k.": "united kingdom", "united kingdom": "united kingdom",
	"great britain": "united kingdom", "england": "united kingdom",
	"canada": "canada", "mexico": "mexico", "germany": "germany", "france": "france", "spain": "spain",
	"netherlands": "netherlands", "ireland": "ireland", "india": "india", "poland": "poland",
	"portugal": "portugal", "brazil": "brazil", "australia": "australia", "singapore": "singapore",
	"emea": "emea", "europe": "europe", "latam": "latam", "apac": "apac",
}

var (
	remoteKeywords = []string{"remote", "work from home", "wfh", "anywhere", "distributed", "telecommute", "virtual"}
	hybridKeywords = []string{"hybrid"}
	onsiteKeywords = []string{"on-site", "onsite", "on site", "in office", "in-office"}
)

// stateCode resolves a state name or postal code. The second result is false for anything else.
func stateCode(s string) (string, bool) {
	if code, ok := stateCodes[s]; ok {
		return code, true
	}
	if len(s) == 2 {
		upper := string([]byte{s[0] &^ 0x20, s[1] &^ 0x20})
		if _, ok := validStateCodes[upper]; ok {
			return upper, true
		}
	}
	return "", false
}

func countryName(s string) (string, bool) {
	name, ok := countryAliases[s]
	return name, ok
}
