package family

import "time"

const CurrentSnapshotVersion = "1"

// Info is the family-level metadata stored next to the member list.
type Info struct {
	FamilyName   string `json:"familyName"`
	Motto        string `json:"motto"`
	Established  string `json:"established"`
	Location     string `json:"location"`
	TotalMembers int    `json:"totalMembers"`
	Generations  int    `json:"generations"`
	LastUpdated  string `json:"lastUpdated"`
}

// Snapshot is the persisted document: every member plus family metadata.
type Snapshot struct {
	Version       string   `json:"version,omitempty"`
	FamilyMembers []Person `json:"familyMembers"`
	FamilyInfo    Info     `json:"familyInfo"`
}

// Refresh stamps the derived metadata fields before a save or export.
func (s *Snapshot) Refresh(generations int, now time.Time) {
	if s.Version == "" {
		s.Version = CurrentSnapshotVersion
	}
	s.FamilyInfo.TotalMembers = len(s.FamilyMembers)
	s.FamilyInfo.Generations = generations
	s.FamilyInfo.LastUpdated = now.UTC().Format(time.RFC3339)
}

// DefaultSnapshot is the built-in two-member dataset used when nothing
// persisted or seeded can be loaded.
func DefaultSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Version: CurrentSnapshotVersion,
		FamilyMembers: []Person{
			{
				ID:           "1",
				Name:         "John Smith",
				Age:          75,
				Designation:  "Retired Engineer",
				Relation:     RelationPatriarch,
				Gender:       GenderMale,
				SpouseID:     "2",
				DateOfBirth:  "1948-03-15",
				PlaceOfBirth: "New York, USA",
				Occupation:   "Engineer",
				Email:        "john.smith@email.com",
				Phone:        "+1-555-0101",
				Address:      "123 Main St, Springfield, USA",
				Notes:        "Family patriarch, founded the family business",
			},
			{
				ID:           "2",
				Name:         "Mary Smith",
				Age:          72,
				Designation:  "Retired Teacher",
				Relation:     RelationMatriarch,
				Gender:       GenderFemale,
				SpouseID:     "1",
				DateOfBirth:  "1951-07-22",
				PlaceOfBirth: "Boston, USA",
				Occupation:   "Teacher",
				Email:        "mary.smith@email.com",
				Phone:        "+1-555-0102",
				Address:      "123 Main St, Springfield, USA",
				Notes:        "Family matriarch, dedicated educator",
			},
		},
		FamilyInfo: Info{
			FamilyName:   "Smith Family",
			Motto:        "Unity in Diversity",
			Established:  now.Format("2006"),
			Location:     "Springfield, USA",
			TotalMembers: 2,
			Generations:  1,
			LastUpdated:  now.UTC().Format(time.RFC3339),
		},
	}
}
