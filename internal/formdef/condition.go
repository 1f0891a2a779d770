package formdef

import (
	"regexp"
	"strings"
)

var (
	strictCondition = regexp.MustCompile(`(q_[a-zA-Z0-9_]+)\s*===\s*['"]([^'"]+)['"]`)
	looseCondition  = regexp.MustCompile(`(q_[a-zA-Z0-9_]+)\s*==\s*['"]([^'"]+)['"]`)
)

// Evaluate reports whether a visibility condition holds for answers.
//
// Supported forms are q_id === 'v' (exact), q_id == 'v' (trimmed,
// case-insensitive), the literals true and false, and a bare q_id tested for
// truthiness. Empty and unrecognised conditions are visible.
func Evaluate(cond string, answers Answers) bool {
	if cond == "" {
		return true
	}

	if m := strictCondition.FindStringSubmatch(cond); m != nil {
		return conditionText(answers.Get(m[1])) == m[2]
	}

	if m := looseCondition.FindStringSubmatch(cond); m != nil {
		got := strings.ToLower(strings.TrimSpace(conditionText(answers.Get(m[1]))))
		return got == strings.ToLower(strings.TrimSpace(m[2]))
	}

	switch cond {
	case "true":
		return true
	case "false":
		return false
	}

	if strings.HasPrefix(cond, "q_") {
		if v, ok := answers[cond]; ok {
			return v.Truthy()
		}
	}

	return true
}
