package extraction

// FlatItem is a single transcribed entry from a categorized list diagram.
type FlatItem struct {
	Description string `json:"description"`
}

// FlatResult is the decoded model output for a flat list diagram. Activity
// and group labels apply to the whole diagram, not to individual entries.
type FlatResult struct {
	ActivityName string     `json:"activity_name"`
	GroupName    string     `json:"group_name"`
	Items        []FlatItem `json:"items"`
}

// SubCause is a sub-branch on a fishbone main cause.
type SubCause struct {
	SubCause string   `json:"sub_cause"`
	Details  []string `json:"details"`
}

// Cause is one main branch of a fishbone diagram. Details holds entries
// attached directly to the branch without an intermediate sub-cause.
type Cause struct {
	MainCause string     `json:"main_cause"`
	SubCauses []SubCause `json:"sub_causes"`
	Details   []string   `json:"details"`
}

// TreeResult is the decoded model output for a fishbone diagram.
type TreeResult struct {
	ProblemStatement string  `json:"problem_statement"`
	GroupName        string  `json:"group_name"`
	Causes           []Cause `json:"causes"`
}
