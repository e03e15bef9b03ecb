package domain

// Group is a set of members sharing expenses. The core only reads Members.
type Group struct {
	GroupID string   `json:"groupID"`
	Name    string   `json:"name"`
	Members []string `json:"members"` // unique member IDs
}

// NewGroup builds a Group with a deduplicated member list, keeping first occurrences
// and dropping empty IDs.
func NewGroup(groupID, name string, members []string) Group {
	return Group{GroupID: groupID, Name: name, Members: DedupeMembers(members)}
}

// DedupeMembers removes duplicates and empty IDs while preserving order.
func DedupeMembers(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// HasMember reports whether memberID belongs to the group.
func (g Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m == memberID {
			return true
		}
	}
	return false
}
