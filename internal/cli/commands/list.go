package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// recordItem is one published record in list output.
type recordItem struct {
	ID             string `json:"id" yaml:"id"`
	FileIdentifier string `json:"file_identifier,omitempty" yaml:"file_identifier,omitempty"`
	Mapped         bool   `json:"mapped" yaml:"mapped"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published catalog records",
		Long: `List the ids selected by records.record_sql.

Records mapped by a previous run show the file identifier of their stored document.`,
		Example: `  # List records
  ingrid-dsc list

  # As JSON for scripts
  ingrid-dsc list -o json`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ids, err := cmdCtx.Engine.RecordIDs(cmd.Context())
	if err != nil {
		return err
	}
	docs, err := cmdCtx.Engine.GetStateStore().ListDocuments()
	if err != nil {
		return err
	}

	stored := make(map[string]*core.Document, len(docs))
	for _, d := range docs {
		stored[d.RecordID] = d
	}

	items := make([]recordItem, 0, len(ids))
	for _, id := range ids {
		item := recordItem{ID: id}
		if d, ok := stored[id]; ok {
			item.FileIdentifier = d.FileIdentifier
			item.Mapped = true
		}
		items = append(items, item)
	}

	r := cmdCtx.Renderer
	if handled, err := r.Data(items); handled {
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, item.FileIdentifier, strconv.FormatBool(item.Mapped)})
	}

	r.Header(1, "Published records")
	r.Table([]string{"ID", "File identifier", "Mapped"}, rows)
	r.Muted(strconv.Itoa(len(items)) + " record(s)")
	return nil
}
