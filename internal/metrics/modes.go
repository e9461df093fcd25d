package metrics

import "strconv"

// modeNames is the fixed effective-mode id → display name table.
var modeNames = map[int]string{
	0:  "UnresolvedRedirect",
	1:  "isDocument",
	2:  "isInternet",
	3:  "isDatabase",
	4:  "isDirectTaxCode",
	5:  "isGlobal",
	6:  "isHarvey",
	7:  "isDatabaseGeneric",
	8:  "isNLP",
	9:  "isDeepResearch",
	10: "isDraft",
	11: "isAutoMode",
	12: "isMultipleDbGeneric",
	13: "isDatabaseGenericVersion2",
	14: "isDatabaseGenericLite",
	15: "isDeepResearchWebSearch",
}

// ModeName returns the display name for an effective-mode id. Unknown
// ids render as their numeric string.
func ModeName(id int) string {
	if name, ok := modeNames[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}
