package template

import (
	"regexp"
	"sort"
	"strings"
)

// Substitute replaces every literal {{token}} occurrence in content with the
// mapped value. It builds one alternation pattern over all known tokens and
// does a single pass, so a value that happens to look like a token is never
// re-matched. Tokens absent from data are left untouched.
func Substitute(content string, data map[string]string) string {
	if len(data) == 0 || content == "" {
		return content
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		if k != "" && strings.Contains(content, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return content
	}

	// longest first, so {{nome_morador}} never loses to {{nome}}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}

	re, err := regexp.Compile(strings.Join(quoted, "|"))
	if err != nil {
		return content
	}

	return re.ReplaceAllStringFunc(content, func(match string) string {
		return data[match]
	})
}
