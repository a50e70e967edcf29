package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/copy.txt
	copyRaw string

	//go:embed template/followup.txt
	followupRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Copy     string
	Followup string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Copy:     strings.TrimSpace(copyRaw),
		Followup: strings.TrimSpace(followupRaw),
	}
}
