package meta

import "strings"

// Changes is the set of properties modified on an image
type Changes uint8

const (
	ChangeDescription Changes = 1 << iota
	ChangeDate
	ChangeDimensions
	ChangeFileName
	ChangeOrientation
)

var changeNames = []struct {
	c    Changes
	name string
}{
	{ChangeDescription, "Description"},
	{ChangeDate, "Date"},
	{ChangeDimensions, "Dimensions"},
	{ChangeFileName, "FileName"},
	{ChangeOrientation, "Orientation"},
}

// Has reports whether every change in c is in the set
func (s Changes) Has(c Changes) bool {
	return s&c == c
}

// Empty reports whether nothing changed
func (s Changes) Empty() bool {
	return s == 0
}

// Names lists the changes in declaration order
func (s Changes) Names() []string {
	var names []string
	for _, n := range changeNames {
		if s.Has(n.c) {
			names = append(names, n.name)
		}
	}
	return names
}

// String returns a comma separated list, "None" when empty
func (s Changes) String() string {
	if s.Empty() {
		return "None"
	}
	return strings.Join(s.Names(), ", ")
}
