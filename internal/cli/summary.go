package cli

import (
	"fmt"
	"strings"
)

type DoctorSummary struct {
	Mode         string   `json:"mode"`
	Healthy      bool     `json:"healthy"`
	Backend      string   `json:"backend"`
	DataDir      string   `json:"data_dir"`
	SeedFile     string   `json:"seed_file,omitempty"`
	ConfigFrom   []string `json:"config_from"`
	Snapshot     string   `json:"snapshot"`
	Members      int      `json:"members"`
	Generations  int      `json:"generations"`
	Root         string   `json:"root,omitempty"`
	DuplicateIDs []string `json:"duplicate_ids,omitempty"`
	DanglingRefs []string `json:"dangling_refs,omitempty"`
	Missing      []string `json:"missing,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

func SummarizeList(values []string, max int) string {
	if len(values) <= max {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(values[:max], ", "), len(values)-max)
}
