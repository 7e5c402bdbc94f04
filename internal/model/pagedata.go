package model

import "html/template"

// PageData is the value a layout is executed with.
type PageData struct {
	Site    *SiteData
	Page    PageSummary
	Content template.HTML
	Data    map[string]any
	Lang    string

	// T holds data.translations[Lang], nil when there is none.
	T            map[string]any
	LanguageURLs map[string]string
}
