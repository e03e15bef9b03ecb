package models

// Group is a row of the groups table. Members may contain duplicates; they are
// removed when mapping to the domain.
type Group struct {
	GroupID string   `db:"id"`
	Name    string   `db:"name"`
	Members []string `db:"members"`
}
