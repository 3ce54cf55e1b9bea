package config

import "strings"

// StateInfo carries the fixed reference data for one state or union
// territory: the census code and the estimated Aadhaar-eligible
// population used for coverage computation.
type StateInfo struct {
	Code       string
	Population int64
}

// stateDirectory maps canonical state names to their reference data.
// Populations are projected 2024 figures rounded to the nearest lakh.
var stateDirectory = map[string]StateInfo{
	"Andhra Pradesh":              {Code: "AP", Population: 53_100_000},
	"Arunachal Pradesh":           {Code: "AR", Population: 1_570_000},
	"Assam":                       {Code: "AS", Population: 35_700_000},
	"Bihar":                       {Code: "BR", Population: 126_800_000},
	"Chhattisgarh":                {Code: "CG", Population: 30_200_000},
	"Goa":                         {Code: "GA", Population: 1_580_000},
	"Gujarat":                     {Code: "GJ", Population: 71_500_000},
	"Haryana":                     {Code: "HR", Population: 30_500_000},
	"Himachal Pradesh":            {Code: "HP", Population: 7_500_000},
	"Jharkhand":                   {Code: "JH", Population: 39_400_000},
	"Karnataka":                   {Code: "KA", Population: 67_600_000},
	"Kerala":                      {Code: "KL", Population: 35_800_000},
	"Madhya Pradesh":              {Code: "MP", Population: 86_600_000},
	"Maharashtra":                 {Code: "MH", Population: 126_400_000},
	"Manipur":                     {Code: "MN", Population: 3_200_000},
	"Meghalaya":                   {Code: "ML", Population: 3_400_000},
	"Mizoram":                     {Code: "MZ", Population: 1_250_000},
	"Nagaland":                    {Code: "NL", Population: 2_200_000},
	"Odisha":                      {Code: "OD", Population: 46_400_000},
	"Punjab":                      {Code: "PB", Population: 30_700_000},
	"Rajasthan":                   {Code: "RJ", Population: 81_000_000},
	"Sikkim":                      {Code: "SK", Population: 690_000},
	"Tamil Nadu":                  {Code: "TN", Population: 76_800_000},
	"Telangana":                   {Code: "TS", Population: 38_100_000},
	"Tripura":                     {Code: "TR", Population: 4_100_000},
	"Uttar Pradesh":               {Code: "UP", Population: 235_700_000},
	"Uttarakhand":                 {Code: "UK", Population: 11_700_000},
	"West Bengal":                 {Code: "WB", Population: 99_000_000},
	"Andaman and Nicobar Islands": {Code: "AN", Population: 400_000},
	"Chandigarh":                  {Code: "CH", Population: 1_200_000},
	"Dadra and Nagar Haveli and Daman and Diu": {Code: "DN", Population: 1_260_000},
	"Delhi":             {Code: "DL", Population: 21_400_000},
	"Jammu and Kashmir": {Code: "JK", Population: 13_600_000},
	"Ladakh":            {Code: "LA", Population: 300_000},
	"Lakshadweep":       {Code: "LD", Population: 70_000},
	"Puducherry":        {Code: "PY", Population: 1_650_000},
}

// defaultStatePopulation is used for states missing from the directory
// (fixtures, renamed territories) so coverage never divides by zero.
const defaultStatePopulation int64 = 10_000_000

// StateCode returns the census code for a state name, or a synthetic
// code derived from the name when the state is not in the directory.
func StateCode(stateName string) string {
	if info, ok := lookupState(stateName); ok {
		return info.Code
	}
	cleaned := strings.ToUpper(strings.ReplaceAll(stateName, " ", ""))
	if len(cleaned) > 2 {
		cleaned = cleaned[:2]
	}
	return cleaned
}

// StatePopulation returns the estimated eligible population for coverage.
func StatePopulation(stateName string) int64 {
	if info, ok := lookupState(stateName); ok {
		return info.Population
	}
	return defaultStatePopulation
}

// StateNameForCode resolves a census code back to the canonical state
// name, case-insensitively.
func StateNameForCode(code string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	for name, info := range stateDirectory {
		if info.Code == upper {
			return name, true
		}
	}
	return "", false
}

func lookupState(stateName string) (StateInfo, bool) {
	if info, ok := stateDirectory[stateName]; ok {
		return info, true
	}
	// Fall back to a case-insensitive scan; source feeds are not
	// consistent about casing.
	lower := strings.ToLower(strings.TrimSpace(stateName))
	for name, info := range stateDirectory {
		if strings.ToLower(name) == lower {
			return info, true
		}
	}
	return StateInfo{}, false
}
