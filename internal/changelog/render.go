package changelog

import (
	"fmt"
	"sort"
	"strings"

	"modship/pkg/modtypes"
)

// ruleWidth is the width of the separator line between sections.
const ruleWidth = 99

// placeholderLine is rendered when a section was emitted without any entries.
const placeholderLine = "    No notable changes."

// Render produces the plain-text changelog document, sections newest-first.
// Categories appear in the given display order; categories found in commits
// but not listed there follow alphabetically.
func Render(sections []modtypes.ChangelogSection, order []string) string {
	var b strings.Builder
	rule := strings.Repeat("-", ruleWidth)

	for i, section := range sections {
		if i > 0 {
			b.WriteString(rule)
			b.WriteString("\n")
		}
		renderSection(&b, section, order)
	}

	return b.String()
}

func renderSection(b *strings.Builder, section modtypes.ChangelogSection, order []string) {
	fmt.Fprintf(b, "Version: %s\n", section.Version.String())
	fmt.Fprintf(b, "Date: %s\n", section.Date.Format("2006-01-02"))

	if section.EntryCount() == 0 {
		b.WriteString(placeholderLine)
		b.WriteString("\n")
		return
	}

	rendered := make(map[string]bool, len(order))
	for _, category := range order {
		renderCategory(b, category, section.Entries[category])
		rendered[category] = true
	}

	// Fallback pass for categories outside the fixed order
	var rest []string
	for category := range section.Entries {
		if !rendered[category] {
			rest = append(rest, category)
		}
	}
	sort.Strings(rest)
	for _, category := range rest {
		renderCategory(b, category, section.Entries[category])
	}
}

func renderCategory(b *strings.Builder, category string, entries []modtypes.ClassifiedCommit) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(b, "    %s:\n", category)
	for _, entry := range entries {
		line := entry.Message
		if entry.Scope != "" {
			line = fmt.Sprintf("%s (%s)", entry.Message, entry.Scope)
		}
		fmt.Fprintf(b, "        - %s\n", line)

		if entry.Body == "" {
			continue
		}
		for _, bodyLine := range strings.Split(entry.Body, "\n") {
			bodyLine = strings.TrimRight(bodyLine, " \t")
			if bodyLine == "" {
				continue
			}
			fmt.Fprintf(b, "            %s\n", bodyLine)
		}
	}
}
