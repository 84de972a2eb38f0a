package domain

import "github.com/google/uuid"

// Member is a row of the profiles table.
type Member struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

// MemberDirectory is a previously fetched member list, passed explicitly to
// whoever needs to resolve member names.
type MemberDirectory []Member

// NameOf returns the display name of the member with the given id, or ""
// when the directory has no such member.
func (d MemberDirectory) NameOf(id uuid.UUID) string {
	for _, m := range d {
		if m.ID == id {
			return m.FullName
		}
	}
	return ""
}
