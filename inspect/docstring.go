package inspect

import (
	"go/ast"
	"regexp"
	"strings"

	"github.com/kordless/mystic/types"
)

// sectionHeader matches a Google/NumPy-style doc comment section header on
// its own line, per spec.md §4.F.
var sectionHeader = regexp.MustCompile(`^(Args|Arguments|Parameters|Returns|Raises|Example|Examples|Notes):\s*$`)

// paramLine matches "NAME: DESC" inside an Args/Parameters/Raises section.
var paramLine = regexp.MustCompile(`^\s*(\S+)\s*:\s*(.*)$`)

// parseDocComment extracts a DocComment from a FuncDecl's doc comment,
// recognizing section headers and falling back to an all-description
// reading when none are present.
func parseDocComment(doc *ast.CommentGroup) types.DocComment {
	var dc types.DocComment
	if doc == nil {
		return dc
	}

	lines := strings.Split(strings.TrimRight(doc.Text(), "\n"), "\n")
	if len(lines) == 0 {
		return dc
	}

	var descLines []string
	var examples []string
	section := ""
	dc.Params = map[string]string{}
	dc.Raises = map[string]string{}

	summarySet := false
	for _, line := range lines {
		if m := sectionHeader.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			section = m[1]
			continue
		}
		if section == "" {
			if !summarySet && strings.TrimSpace(line) != "" {
				dc.Summary = strings.TrimSpace(line)
				summarySet = true
				continue
			}
			descLines = append(descLines, line)
			continue
		}
		switch section {
		case "Args", "Arguments", "Parameters":
			if m := paramLine.FindStringSubmatch(line); m != nil {
				dc.Params[m[1]] = strings.TrimSpace(m[2])
			}
		case "Returns":
			dc.Returns = strings.TrimSpace(strings.TrimSpace(dc.Returns + " " + line))
		case "Raises":
			if m := paramLine.FindStringSubmatch(line); m != nil {
				dc.Raises[m[1]] = strings.TrimSpace(m[2])
			}
		case "Example", "Examples":
			examples = append(examples, line)
		case "Notes":
			dc.Notes = strings.TrimSpace(strings.TrimSpace(dc.Notes + "\n" + line))
		}
	}

	dc.Description = strings.TrimSpace(strings.Join(descLines, "\n"))
	if len(examples) > 0 {
		dc.Examples = []string{strings.TrimSpace(strings.Join(examples, "\n"))}
	}
	if len(dc.Params) == 0 {
		dc.Params = nil
	}
	if len(dc.Raises) == 0 {
		dc.Raises = nil
	}
	return dc
}
