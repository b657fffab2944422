package artstart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metadata names the program, concepts and encounter types the calculation
// looks up. Codes are the concept / encounter type UUIDs of the source
// clinical system.
type Metadata struct {
	HIVProgram                     string `yaml:"hiv_program"`
	ARVPlanConcept                 string `yaml:"arv_plan_concept"`
	StartDrugsConcept              string `yaml:"start_drugs_concept"`
	HistoricalDrugStartDateConcept string `yaml:"historical_drug_start_date_concept"`
	PharmacyEncounterType          string `yaml:"pharmacy_encounter_type"`
	AdultFollowUpEncounterType     string `yaml:"adult_follow_up_encounter_type"`
	PediatricFollowUpEncounterType string `yaml:"pediatric_follow_up_encounter_type"`
}

// DefaultMetadata returns the EPTS identifiers.
func DefaultMetadata() Metadata {
	return Metadata{
		HIVProgram:                     "efe2481f-9e75-4515-8d5a-86bfde2b5ad3",
		ARVPlanConcept:                 "e1d9ee10-1d5f-11e0-b929-000c29ad1d07",
		StartDrugsConcept:              "e1d9ef28-1d5f-11e0-b929-000c29ad1d07",
		HistoricalDrugStartDateConcept: "e1d8f690-1d5f-11e0-b929-000c29ad1d07",
		PharmacyEncounterType:          "e279133c-1d5f-11e0-b929-000c29ad1d07",
		AdultFollowUpEncounterType:     "e278f956-1d5f-11e0-b929-000c29ad1d07",
		PediatricFollowUpEncounterType: "e278fce4-1d5f-11e0-b929-000c29ad1d07",
	}
}

// LoadMetadata reads a YAML file on top of DefaultMetadata. An empty path
// returns the defaults.
func LoadMetadata(path string) (Metadata, error) {
	md := DefaultMetadata()
	if path == "" {
		return md, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &md); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata file %s: %w", path, err)
	}
	if err := md.Validate(); err != nil {
		return Metadata{}, fmt.Errorf("metadata file %s: %w", path, err)
	}
	return md, nil
}

func (m Metadata) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"hiv_program", m.HIVProgram},
		{"arv_plan_concept", m.ARVPlanConcept},
		{"start_drugs_concept", m.StartDrugsConcept},
		{"historical_drug_start_date_concept", m.HistoricalDrugStartDateConcept},
		{"pharmacy_encounter_type", m.PharmacyEncounterType},
		{"adult_follow_up_encounter_type", m.AdultFollowUpEncounterType},
		{"pediatric_follow_up_encounter_type", m.PediatricFollowUpEncounterType},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// VisitCategory maps an encounter type code to its visit category. Unknown
// and nil codes map to the empty category, which no rule admits.
func (m Metadata) VisitCategory(encounterType *string) VisitCategory {
	if encounterType == nil || *encounterType == "" {
		return ""
	}
	switch *encounterType {
	case m.PharmacyEncounterType:
		return VisitPharmacy
	case m.AdultFollowUpEncounterType:
		return VisitAdultFollowUp
	case m.PediatricFollowUpEncounterType:
		return VisitPediatricFollowUp
	}
	return ""
}

func (m Metadata) Rules() Rules {
	return Rules{
		StartDrugs: m.StartDrugsConcept,
		AllowedVisits: map[VisitCategory]bool{
			VisitPharmacy:          true,
			VisitAdultFollowUp:     true,
			VisitPediatricFollowUp: true,
		},
	}
}
