package web

var messages = map[string]map[string]string{
	"fr": {
		"site_name":   "Agence",
		"nav_home":    "Accueil",
		"nav_work":    "Nos projets",
		"nav_contact": "Contact",
		"featured":    "Projets a la une",
		"ecosystem":   "Notre ecosysteme",
		"search":      "Rechercher",
		"reset":       "Reinitialiser les filtres",
		"empty":       "Aucun projet ne correspond aux filtres selectionnes.",
		"no_results":  "Aucun projet ne correspond a votre recherche.",
		"industry":    "Secteur",
		"service":     "Service",
		"subsidiary":  "Filiale",
		"not_found":   "Page introuvable",
		"degraded":    "Une partie du contenu est momentanement indisponible.",
	},
	"en": {
		"site_name":   "Agency",
		"nav_home":    "Home",
		"nav_work":    "Our work",
		"nav_contact": "Contact",
		"featured":    "Featured work",
		"ecosystem":   "Our ecosystem",
		"search":      "Search",
		"reset":       "Reset filters",
		"empty":       "No projects match the selected filters.",
		"no_results":  "No projects match your search.",
		"industry":    "Industry",
		"service":     "Service",
		"subsidiary":  "Subsidiary",
		"not_found":   "Page not found",
		"degraded":    "Some content is temporarily unavailable.",
	},
}

// translate falls back to English, then to the key itself.
func translate(locale, key string) string {
	if m, ok := messages[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := messages["en"][key]; ok {
		return v
	}
	return key
}
