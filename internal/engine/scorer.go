package engine

import (
	"math"
	"strings"

	"github.com/civicstack/civic-triage/internal/models"
)

var priorityHighKeywords = []string{"emergency", "urgent", "critical", "dangerous", "life threatening"}
var priorityMediumKeywords = []string{"important", "soon", "needed", "problem", "issue"}
var priorityLowKeywords = []string{"suggestion", "feedback", "information", "general", "minor"}

// urgencyWeights is ordered so multiword keywords are checked alongside
// single words; matching is substring based, mirroring the keyword tables.
var urgencyWeights = []struct {
	Keyword string
	Weight  float64
}{
	{"emergency", 4.0},
	{"urgent", 3.0},
	{"immediate", 3.0},
	{"critical", 3.5},
	{"dangerous", 3.5},
	{"broken", 2.0},
	{"not working", 2.0},
	{"failed", 2.0},
	{"help", 1.5},
	{"problem", 1.0},
	{"issue", 1.0},
}

var categoryUrgencyMultipliers = map[string]float64{
	"Public Safety":        1.5,
	"Healthcare":           1.4,
	"Infrastructure":       1.2,
	"Environment":          1.1,
	"Transportation":       1.0,
	"Education":            0.9,
	"Digital Services":     0.8,
	models.CategoryGeneral: 0.7,
}

// subcategoryTable lists each category's subcategories in preference order;
// the first entry is the default when no keywords match.
var subcategoryTable = map[string][]struct {
	Name     string
	Keywords []string
}{
	"Infrastructure": {
		{"Road Maintenance", []string{"road", "pothole", "street", "pavement"}},
		{"Water Supply", []string{"water", "tap", "pipeline", "supply"}},
		{"Electricity", []string{"power", "electricity", "electric", "current"}},
		{"Drainage", []string{"drain", "sewer", "water logging", "flood"}},
		{"Street Lighting", []string{"streetlight", "light", "lamp", "lighting"}},
		{"Construction", []string{"construction", "building", "work", "site"}},
		{"Utilities", []string{"utility", "service", "connection"}},
	},
	"Public Safety": {
		{"Police Services", []string{"police", "cop", "law", "order"}},
		{"Fire Safety", []string{"fire", "smoke", "burn", "flame"}},
		{"Emergency Response", []string{"emergency", "ambulance", "108", "100"}},
		{"Crime Prevention", []string{"crime", "theft", "robbery", "violence"}},
		{"Traffic Safety", []string{"traffic", "accident", "signal", "crossing"}},
		{"Security", []string{"security", "guard", "protection", "safety"}},
	},
	"Environment": {
		{"Waste Management", []string{"garbage", "trash", "waste", "recycling"}},
		{"Air Pollution", []string{"air", "smog", "smoke", "dust"}},
		{"Water Pollution", []string{"water pollution", "contamination", "sewage"}},
		{"Noise Pollution", []string{"noise", "loud", "sound"}},
		{"Sanitation", []string{"sanitation", "clean", "dirty", "smell"}},
		{"Parks and Recreation", []string{"park", "garden", "tree", "playground"}},
	},
	"Transportation": {
		{"Public Transport", []string{"bus", "metro", "train", "transport"}},
		{"Traffic Management", []string{"traffic", "congestion", "jam", "signal"}},
		{"Parking", []string{"parking", "parked", "garage"}},
		{"Road Safety", []string{"accident", "crossing", "pedestrian", "speed"}},
		{"Vehicle Registration", []string{"registration", "licence", "license", "permit"}},
		{"Route Planning", []string{"route", "schedule", "timing"}},
	},
	"Healthcare": {
		{"Hospital Services", []string{"hospital", "clinic", "ward", "admission"}},
		{"Emergency Medical", []string{"emergency", "ambulance", "critical"}},
		{"Public Health", []string{"disease", "outbreak", "hygiene"}},
		{"Vaccination", []string{"vaccine", "vaccination", "immunization"}},
		{"Medical Facilities", []string{"medicine", "pharmacy", "equipment"}},
		{"Health Insurance", []string{"insurance", "claim", "coverage"}},
	},
	"Education": {
		{"School Administration", []string{"school", "admission", "fee"}},
		{"Higher Education", []string{"college", "university", "degree"}},
		{"Libraries", []string{"library", "book", "reading"}},
		{"Educational Programs", []string{"program", "course", "training"}},
		{"Student Services", []string{"student", "exam", "class"}},
		{"Scholarships", []string{"scholarship", "grant", "stipend"}},
	},
	"Digital Services": {
		{"Government Portals", []string{"portal", "website", "site"}},
		{"Online Applications", []string{"application", "form", "apply", "online"}},
		{"Technical Support", []string{"error", "not working", "technical", "support"}},
		{"Digital Payments", []string{"payment", "transaction", "refund"}},
		{"E-Governance", []string{"certificate", "document", "record"}},
		{"Internet Services", []string{"internet", "wifi", "connection", "network"}},
	},
	models.CategoryGeneral: {
		{"Customer Service", []string{"service", "staff", "behaviour", "behavior"}},
		{"Information Request", []string{"information", "question", "enquiry", "inquiry"}},
		{"Complaints", []string{"complaint", "grievance"}},
		{"Suggestions", []string{"suggestion", "suggest", "feedback"}},
		{"Administrative", []string{"office", "officer", "department"}},
		{"Miscellaneous", []string{"other", "misc"}},
	},
}

// AssessPriority derives the ordinal priority tier from keyword evidence and
// the resolved category. Explicit urgency language always wins over category
// defaults; category defaults never override explicit language.
func AssessPriority(text, category string) models.Priority {
	lower := strings.ToLower(text)

	for _, kw := range priorityHighKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}

	if category == "Public Safety" || category == "Healthcare" {
		for _, kw := range priorityMediumKeywords {
			if strings.Contains(lower, kw) {
				return models.PriorityHigh
			}
		}
		return models.PriorityMedium
	}

	for _, kw := range priorityMediumKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityMedium
		}
	}
	for _, kw := range priorityLowKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityLow
		}
	}

	if category == "Infrastructure" || category == "Environment" {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

// UrgencyScore computes the 1-10 urgency estimate: a base of 5 plus keyword
// weights, scaled by the category multiplier and rounded to one decimal.
func UrgencyScore(text, category string) float64 {
	lower := strings.ToLower(text)

	boost := 0.0
	for _, entry := range urgencyWeights {
		if strings.Contains(lower, entry.Keyword) {
			boost += entry.Weight
		}
	}

	multiplier, ok := categoryUrgencyMultipliers[category]
	if !ok {
		multiplier = 1.0
	}

	score := (5.0 + boost) * multiplier
	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}
	return math.Round(score*10) / 10
}

// Subcategory picks the best keyword-scored subcategory within the category.
// Ties, including the zero-match case, resolve to the first listed entry.
func Subcategory(text, category string) string {
	entries, ok := subcategoryTable[category]
	if !ok || len(entries) == 0 {
		return models.CategoryGeneral
	}

	lower := strings.ToLower(text)
	best := entries[0].Name
	bestScore := 0
	for _, entry := range entries {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = entry.Name
		}
	}
	return best
}
