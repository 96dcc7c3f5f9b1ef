package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/recruiteros/recruiteros/internal/pipeline"
)

// boardView renders the pipeline as four columns and remembers the active
// semantic filter. A nil filtered set means no filter is active, which is not
// the same as a filter that matched nothing.
type boardView struct {
	store    *pipeline.Store
	query    string
	filtered map[string]bool
}

func newBoardView(store *pipeline.Store) *boardView {
	return &boardView{store: store}
}

func (b *boardView) applyFilter(query string, ids []string) {
	b.query = strings.TrimSpace(query)
	b.filtered = make(map[string]bool, len(ids))
	for _, id := range ids {
		b.filtered[id] = true
	}
}

func (b *boardView) clearFilter() {
	b.query = ""
	b.filtered = nil
}

// visible returns the records currently on the board, store order preserved.
func (b *boardView) visible() []*pipeline.CandidateRecord {
	snapshot := b.store.Snapshot()
	if b.filtered == nil {
		return snapshot
	}

	records := make([]*pipeline.CandidateRecord, 0, len(snapshot))
	for _, record := range snapshot {
		if b.filtered[record.ID] {
			records = append(records, record)
		}
	}
	return records
}

func (b *boardView) Render() string {
	byStage := make(map[pipeline.Stage][]*pipeline.CandidateRecord, len(pipeline.Stages()))
	for _, record := range b.visible() {
		byStage[record.Stage] = append(byStage[record.Stage], record)
	}

	var builder strings.Builder
	if b.filtered != nil {
		fmt.Fprintf(&builder, "\nPipeline board (filter: %q)\n", b.query)
	} else {
		builder.WriteString("\nPipeline board\n")
	}

	for _, stage := range pipeline.Stages() {
		records := byStage[stage]
		fmt.Fprintf(&builder, "\n%s (%d)\n", stage, len(records))
		for _, record := range records {
			labels := make([]string, 0, len(record.Tags))
			for _, tag := range record.Tags {
				labels = append(labels, tag.Label)
			}
			fmt.Fprintf(&builder, "  %s / score %d", record.Name, record.Score)
			if len(labels) > 0 {
				fmt.Fprintf(&builder, " / %s", strings.Join(labels, ", "))
			}
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// pickCandidate prompts for one of the visible records. A back selection
// returns nil without an error.
func (b *boardView) pickCandidate(label string) (*pipeline.CandidateRecord, error) {
	records := b.visible()
	if len(records) == 0 {
		return nil, fmt.Errorf("no candidates on the board")
	}

	items := make([]string, 0, len(records))
	for _, record := range records {
		items = append(items, fmt.Sprintf("%s %s / %s / score %d",
			record.ID, record.Name, record.Stage, record.Score,
		))
	}

	candidatePrompt := promptui.Select{
		Label: label,
		Items: append(items, PromptBack),
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return nil, err
	}

	if selected == PromptBack {
		return nil, nil
	}

	id := strings.Split(selected, " ")[0]

	record := b.store.FindByID(id)
	if record == nil {
		return nil, fmt.Errorf("there is no such candidate id %s", id)
	}

	return record, nil
}
