package common

var (
	OutputTypes = []string{"json", "yaml"}
)
