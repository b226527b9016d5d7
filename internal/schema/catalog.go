package schema

// Object API names.
const (
	ReportCases      = "report_cases"
	Diseases         = "diseases"
	Localizations    = "localizations"
	LocalizationData = "localization_data"
	Languages        = "languages"
	Roles            = "roles"
)

func idField() FieldDef {
	return FieldDef{APIName: "id", Title: "ID", Type: FieldNumber, Column: "id"}
}

// DefaultObjects returns the catalog of queryable objects. Users are not
// exposed: their table holds password hashes.
func DefaultObjects() []*ObjectDef {
	return []*ObjectDef{
		{
			APIName:     ReportCases,
			Title:       "Report case",
			PluralTitle: "Report cases",
			Table:       "report_case",
			Fields: []FieldDef{
				idField(),
				{APIName: "date", Title: "Date", Type: FieldDate, Column: "date", Aliases: []string{"DATE"}},
				{APIName: "totalConfirmed", Title: "Total confirmed", Type: FieldNumber, Column: "totalConfirmed", Aliases: []string{"TotalConfirmed", "CONFIRMED"}},
				{APIName: "totalDeath", Title: "Total deaths", Type: FieldNumber, Column: "totalDeath", Aliases: []string{"TotalDeath", "DEATH"}},
				{APIName: "totalRecoveries", Title: "Total recoveries", Type: FieldNumber, Column: "totalRecoveries"},
				{APIName: "totalActive", Title: "Total active", Type: FieldNumber, Column: "totalActive", Aliases: []string{"TotalActive", "ACTIVE"}},
				{APIName: "localizationId", Title: "Localization ID", Type: FieldNumber, Column: "localizationId"},
				{APIName: "diseaseId", Title: "Disease ID", Type: FieldNumber, Column: "diseaseId"},

				{APIName: "disease.id", Title: "Disease ID", Type: FieldNumber, Join: "disease", Column: "id"},
				{APIName: "disease.name", Title: "Disease", Type: FieldText, Join: "disease", Column: "name", Aliases: []string{"Disease", "DISEASE", "name"}},

				{APIName: "localization.id", Title: "Localization ID", Type: FieldNumber, Join: "localization", Column: "id"},
				{APIName: "localization.country", Title: "Country", Type: FieldText, Join: "localization", Column: "country", Aliases: []string{"Country", "COUNTRY"}},
				{APIName: "localization.continent", Title: "Continent", Type: FieldText, Join: "localization", Column: "continent", Aliases: []string{"Continent", "CONTINENT"}},

				{APIName: "localizationData.inhabitantsNumber", Title: "Inhabitants", Type: FieldNumber, Join: "localizationData", Column: "inhabitantsNumber", Aliases: []string{"inhabitantsNumber"}},
				{APIName: "localizationData.vaccinationRate", Title: "Vaccination rate", Type: FieldNumber, Join: "localizationData", Column: "vaccinationRate", Aliases: []string{"vaccinationRate"}},
			},
			Joins: []JoinDef{
				{Name: "disease", Title: "Disease", Table: "Disease", On: []JoinOn{{Local: "diseaseId", Remote: "id"}}},
				{Name: "localization", Title: "Localization", Table: "localization", On: []JoinOn{{Local: "localizationId", Remote: "id"}}},
				{Name: "localizationData", Title: "Localization data", Table: "LocalizationData", On: []JoinOn{
					{Local: "localizationId", Remote: "localizationId"},
					{Local: "date", Remote: "date"},
				}},
			},
		},
		{
			APIName:     Diseases,
			Title:       "Disease",
			PluralTitle: "Diseases",
			Table:       "Disease",
			Fields: []FieldDef{
				idField(),
				{APIName: "name", Title: "Name", Type: FieldText, Column: "name", Aliases: []string{"Disease", "DISEASE"}},
			},
		},
		{
			APIName:     Localizations,
			Title:       "Localization",
			PluralTitle: "Localizations",
			Table:       "localization",
			Fields: []FieldDef{
				idField(),
				{APIName: "country", Title: "Country", Type: FieldText, Column: "country", Aliases: []string{"COUNTRY"}},
				{APIName: "continent", Title: "Continent", Type: FieldText, Column: "continent", Aliases: []string{"CONTINENT"}},
			},
		},
		{
			APIName:     LocalizationData,
			Title:       "Localization data",
			PluralTitle: "Localization data",
			Table:       "LocalizationData",
			Fields: []FieldDef{
				idField(),
				{APIName: "localizationId", Title: "Localization ID", Type: FieldNumber, Column: "localizationId"},
				{APIName: "date", Title: "Date", Type: FieldDate, Column: "date", Aliases: []string{"DATE"}},
				{APIName: "inhabitantsNumber", Title: "Inhabitants", Type: FieldNumber, Column: "inhabitantsNumber"},
				{APIName: "vaccinationRate", Title: "Vaccination rate", Type: FieldNumber, Column: "vaccinationRate"},

				{APIName: "localization.country", Title: "Country", Type: FieldText, Join: "localization", Column: "country", Aliases: []string{"Country", "COUNTRY"}},
				{APIName: "localization.continent", Title: "Continent", Type: FieldText, Join: "localization", Column: "continent", Aliases: []string{"Continent", "CONTINENT"}},
			},
			Joins: []JoinDef{
				{Name: "localization", Title: "Localization", Table: "localization", On: []JoinOn{{Local: "localizationId", Remote: "id"}}},
			},
		},
		{
			APIName:     Languages,
			Title:       "Language",
			PluralTitle: "Languages",
			Table:       "Language",
			Fields: []FieldDef{
				idField(),
				{APIName: "lang", Title: "Language", Type: FieldText, Column: "lang"},
			},
		},
		{
			APIName:     Roles,
			Title:       "Role",
			PluralTitle: "Roles",
			Table:       "Role",
			Fields: []FieldDef{
				idField(),
				{APIName: "roleName", Title: "Role", Type: FieldText, Column: "roleName"},
			},
		},
	}
}
