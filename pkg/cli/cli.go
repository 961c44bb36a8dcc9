package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gentoomaniac/rmqbackup/pkg/db"
	"github.com/manifoldco/promptui"
)

// PromptRuns lets the user pick one of the catalogued export runs, newest
// first.
func PromptRuns(runs []*db.Run) (*db.Run, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no export runs recorded")
	}
	if len(runs) == 1 {
		return runs[0], nil
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp > runs[j].Timestamp
	})

	runSearchFunc := func(input string, idx int) bool {
		run := runs[idx]

		return strings.Contains(strings.ToLower(run.Path), strings.ToLower(input)) ||
			strings.Contains(strings.ToLower(run.Host), strings.ToLower(input))
	}

	size := len(runs)
	if size >= 10 {
		size = 10
	}

	items := make([]promptRun, len(runs))
	for i, run := range runs {
		items[i] = promptRun{
			Path:    run.Path,
			Host:    run.Host,
			Created: time.Unix(run.Timestamp, 0).Format(time.RFC3339),
			Queues:  run.Queues,
			Records: run.Records,
		}
	}

	selector := promptui.Select{
		Label:             "Select the export run to restore",
		Items:             items,
		Searcher:          runSearchFunc,
		StartInSearchMode: true,
		HideSelected:      true,
		Size:              size,
		Templates: &promptui.SelectTemplates{
			Active:   fmt.Sprintf("%s {{ .Path | cyan }}", promptui.IconSelect),
			Inactive: " {{ .Path }}",
			Details: `
{{ "Details:" | bold }}
	{{ "Path:" | bold }}	{{ .Path | cyan }}
	{{ "Host:" | bold }}	{{ .Host | cyan }}
	{{ "Created:" | bold }}	{{ .Created | cyan }}
	{{ "Queues:" | bold }}	{{ .Queues | cyan }}
	{{ "Records:" | bold }}	{{ .Records | cyan }}
`,
			Selected: "{{ .Path }}",
		},
	}

	// keep stdout clean so the selection result stays scriptable
	selector.Stdout = os.Stderr

	index, _, err := selector.Run()
	if err != nil {
		os.Stdout.Sync()
		return nil, err
	}

	return runs[index], nil
}

type promptRun struct {
	Path    string
	Host    string
	Created string
	Queues  int
	Records int
}
