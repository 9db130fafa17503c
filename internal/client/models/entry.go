// Package models defines the journal domain types exchanged with the API.
package models

import "time"

// Entry is a single journal record: one symptom episode with the exposures
// observed around it. Ids are opaque strings assigned by the server; records
// pending an optimistic create carry a temporary client id instead.
type Entry struct {
	ID               string    `json:"id"`
	OccurredOn       time.Time `json:"occurredOn"`
	UpperRespiratory int       `json:"upperRespiratory"`
	LowerRespiratory int       `json:"lowerRespiratory"`
	Skin             int       `json:"skin"`
	Eyes             int       `json:"eyes"`
	Total            int       `json:"total"`
	Exposures        []string  `json:"exposures"`
	Note             string    `json:"note,omitempty"`
}

// NewEntry is the request body for creating or replacing an entry:
// an Entry without its id.
type NewEntry struct {
	OccurredOn       time.Time `json:"occurredOn"`
	UpperRespiratory int       `json:"upperRespiratory"`
	LowerRespiratory int       `json:"lowerRespiratory"`
	Skin             int       `json:"skin"`
	Eyes             int       `json:"eyes"`
	Total            int       `json:"total"`
	Exposures        []string  `json:"exposures"`
	Note             string    `json:"note,omitempty"`
}

// BuildNewEntryParams collects the raw form values for BuildNewEntry.
type BuildNewEntryParams struct {
	Date             time.Time
	UpperRespiratory int
	LowerRespiratory int
	Skin             int
	Eyes             int
	Exposures        []string
	Note             string
}

// BuildNewEntry assembles a NewEntry from form values. Total is computed as
// the sum of the four severities here and only here; the cache layer stores
// whatever total the server or caller supplies without recomputing it.
func BuildNewEntry(p BuildNewEntryParams) NewEntry {
	return NewEntry{
		OccurredOn:       p.Date,
		UpperRespiratory: p.UpperRespiratory,
		LowerRespiratory: p.LowerRespiratory,
		Skin:             p.Skin,
		Eyes:             p.Eyes,
		Total:            p.UpperRespiratory + p.LowerRespiratory + p.Skin + p.Eyes,
		Exposures:        p.Exposures,
		Note:             p.Note,
	}
}

// Entry lifts a NewEntry into an Entry with the given id. Used when placing
// a provisional record into the cache before the server has confirmed it.
func (n NewEntry) Entry(id string) Entry {
	return Entry{
		ID:               id,
		OccurredOn:       n.OccurredOn,
		UpperRespiratory: n.UpperRespiratory,
		LowerRespiratory: n.LowerRespiratory,
		Skin:             n.Skin,
		Eyes:             n.Eyes,
		Total:            n.Total,
		Exposures:        n.Exposures,
		Note:             n.Note,
	}
}

// ExposureType is a lookup-table row mapping an exposure name to its id.
type ExposureType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
