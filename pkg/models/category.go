package models

import "strings"

// Category is an entry of the fixed category table used for browsing.
type Category struct {
	ID          string
	Name        string
	Description string
}

const (
	UnknownCategoryName        = "Unknown Category"
	UnknownCategoryDescription = "Attack category description not available"
)

// Categories is the fixed id -> name table. Attack.Category holds the Name.
var Categories = []Category{
	{ID: "network", Name: "Network", Description: "Attacks targeting network infrastructure and protocols"},
	{ID: "web-app", Name: "Web/App", Description: "Vulnerabilities in web applications and services"},
	{ID: "malware", Name: "Malware", Description: "Malicious software designed to damage or compromise systems"},
	{ID: "social-engineering", Name: "Social Engineering", Description: "Psychological manipulation to gain unauthorized access"},
	{ID: "wireless-iot", Name: "Wireless/IoT", Description: "Attacks on wireless networks and IoT devices"},
	{ID: "cryptographic", Name: "Cryptographic", Description: "Breaking or bypassing cryptographic protections"},
	{ID: "insider-apt", Name: "Insider/APT", Description: "Advanced persistent threats and insider attacks"},
	{ID: "cloud", Name: "Cloud Attacks", Description: "Attacks targeting cloud infrastructure and services"},
}

// LookupCategory returns the category for id. Unknown ids yield the
// "Unknown Category" fallback and false.
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{ID: id, Name: UnknownCategoryName, Description: UnknownCategoryDescription}, false
}

// FilterByCategory returns the attacks whose category matches the name of
// categoryID case-insensitively. An unknown id matches nothing.
func FilterByCategory(attacks []Attack, categoryID string) (Category, []Attack) {
	category, ok := LookupCategory(categoryID)
	matched := []Attack{}
	if !ok {
		return category, matched
	}
	for _, a := range attacks {
		if strings.EqualFold(a.Category, category.Name) {
			matched = append(matched, a)
		}
	}
	return category, matched
}
