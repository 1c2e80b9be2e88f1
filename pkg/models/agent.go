package models

// Agent is one row of the EDW agent list.
type Agent struct {
	Code string
	Name string
}
