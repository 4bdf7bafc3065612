package config

// Default returns the built-in vocabulary and thresholds. Load overlays a
// file on top of it.
func Default() Config {
	return Config{
		Recovery: Recovery{AnchorKey: "company_name"},
		Resolver: Resolver{
			NameThreshold:         0.95,
			CorroboratedThreshold: 0.80,
			DescriptionThreshold:  0.70,
			AmbiguityMargin:       0.03,
			DescriptionMaxRunes:   512,
			LegalSuffixes: []string{
				"inc", "corp", "llc", "ltd", "co", "corporation", "company",
				"group", "incorporated", "limited",
			},
			Workers:         0,
			ParallelMinKeys: 256,
		},
		Merge: Merge{
			ScalarWeight:      1,
			DescriptionWeight: 2,
			RoleWeight:        3,
			TechWeight:        1,
		},
		Normalize: Normalize{
			StageRules: []Rule{
				{Tag: "Public", Any: []string{"public", "nyse", "nasdaq", "listed", "publicly traded"}},
				{Tag: "Startup", Any: []string{"startup", "start-up", "seed", "series", "early-stage", "early stage"}},
				{Tag: "Non-Profit", Any: []string{"non-profit", "nonprofit", "not-for-profit", "foundation", "ngo", "charity"}},
				{Tag: "Government", Any: []string{"government", "agency", "state-owned", "crown", "federal", "municipal"}},
				{Tag: "Private", Any: []string{"private", "privately held", "subsidiary", "owned", "division", "bootstrapped"}},
				{Tag: "Established", Any: []string{"established", "mature"}},
				{Tag: "Growth", Any: []string{"growth", "growing", "scale-up", "scaleup"}},
			},
			IndustryRules: []Rule{
				{Tag: "Technology", Any: []string{"tech", "technology", "it", "information technology", "software", "saas"}},
				{Tag: "Financial Services", Any: []string{"finance", "financial", "fintech", "banking", "financial services"}},
				{Tag: "Healthcare", Any: []string{"health", "healthcare", "health care", "medical", "healthtech"}},
				{Tag: "E-commerce", Any: []string{"ecommerce", "e-commerce", "online retail"}},
				{Tag: "Education", Any: []string{"edtech", "education", "e-learning"}},
				{Tag: "Real Estate", Any: []string{"real estate", "realestate", "real-estate", "proptech", "commercial real estate", "residential real estate", "real estate development"}},
				{Tag: "Biotechnology", Any: []string{"biotech", "biotechnology", "bio-tech", "biotechnology research", "biotech research"}},
			},
			CultureRules: []TagRule{
				{Any: []string{"technology", "software", "saas", "internet"}, Tags: []string{"Innovative", "Tech-Driven"}},
				{Any: []string{"financial", "finance", "banking", "insurance"}, Tags: []string{"Analytical", "Client-Focused"}},
				{Any: []string{"healthcare", "health", "medical", "biotech", "biotechnology", "pharma"}, Tags: []string{"Mission-Driven", "Patient-Focused"}},
				{Any: []string{"education", "edtech"}, Tags: []string{"Mission-Driven", "Learning-Focused"}},
				{Any: []string{"retail", "e-commerce", "consumer"}, Tags: []string{"Customer-Centric", "Fast-Moving"}},
				{Any: []string{"manufacturing", "industrial", "automotive", "energy"}, Tags: []string{"Safety-Focused", "Process-Driven"}},
				{Any: []string{"consulting", "professional services"}, Tags: []string{"Client-Focused", "Collaborative"}},
			},
			DefaultCultureTags: []string{"Collaborative", "Growth-Oriented"},
			StageTags: map[string]string{
				"Startup":     "Fast-Paced",
				"Growth":      "Fast-Paced",
				"Public":      "Established",
				"Established": "Established",
				"Non-Profit":  "Mission-Driven",
				"Government":  "Public Service",
			},
			MaxCultureTags: 8,
			LocationSentinels: map[string]string{
				"multiple locations": "Multiple Locations",
				"multiple":           "Multiple Locations",
				"various":            "Multiple Locations",
				"various locations":  "Multiple Locations",
				"nationwide":         "Multiple Locations",
				"global":             "Multiple Locations",
				"worldwide":          "Multiple Locations",
				"multiple cities":    "Multiple Locations",
				"remote":             "Remote",
				"fully remote":       "Remote",
				"remote-first":       "Remote",
				"anywhere":           "Remote",
				"work from home":     "Remote",
				"wfh":                "Remote",
				"not specified":      "Not Specified",
				"n/a":                "Not Specified",
				"na":                 "Not Specified",
				"tbd":                "Not Specified",
				"unknown":            "Not Specified",
			},
			StateCodes: map[string]string{
				"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
				"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
				"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
				"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
				"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
				"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
				"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
				"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
				"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
				"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
				"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
				"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
				"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
			},
			CountryAliases: map[string]string{
				"usa":                      "USA",
				"us":                       "USA",
				"u.s.":                     "USA",
				"u.s.a.":                   "USA",
				"united states":            "USA",
				"united states of america": "USA",
				"uk":                       "UK",
				"u.k.":                     "UK",
				"united kingdom":           "UK",
				"great britain":            "UK",
				"england":                  "UK",
				"uae":                      "UAE",
			},
			SkillRules: []TagRule{
				{Any: []string{"software", "developer", "engineer", "programmer"}, Tags: []string{"Programming", "Problem Solving", "Software Development"}},
				{Any: []string{"data", "analyst", "analytics"}, Tags: []string{"Data Analysis", "SQL", "Excel"}},
				{Any: []string{"manager", "director", "head", "lead"}, Tags: []string{"Leadership", "Project Management", "Strategic Planning"}},
				{Any: []string{"sales", "account executive", "business development"}, Tags: []string{"Sales", "Negotiation", "CRM"}},
				{Any: []string{"marketing", "brand", "growth"}, Tags: []string{"Marketing Strategy", "Content Creation", "Analytics"}},
				{Any: []string{"designer", "ux", "ui"}, Tags: []string{"Design", "Prototyping", "User Research"}},
				{Any: []string{"nurse", "clinical", "physician"}, Tags: []string{"Patient Care", "Clinical Documentation"}},
			},
			DefaultSkills: []string{"Communication", "Teamwork", "Problem Solving"},
		},
		Repair: Repair{
			DefaultMin: 50000,
			DefaultMax: 80000,
			Widen:      30000,
			Ceiling:    500000,
			CeilingMin: 350000,
		},
		Audit: Audit{
			PlaceholderPhrases: []string{
				"lorem ipsum", "placeholder", "tbd", "todo", "sample company",
				"example company", "test company", "company description here",
				"insert description", "n/a", "xxx",
			},
			PointsPerCompany:   5,
			CriticalPenalty:    2,
			WarningPenalty:     0.5,
			SalaryFloor:        15000,
			InternMinCap:       100000,
			EntryMinCap:        100000,
			SeniorMaxFloor:     70000,
			ExecutiveMaxFloor:  150000,
			SmallMaxRoles:      10,
			EnterpriseMinRoles: 2,
		},
		Store: Store{Path: ""},
	}
}
