package commands

import (
	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// indexResult is the machine-readable form of an index document.
type indexResult struct {
	RecordID string            `json:"record_id" yaml:"record_id"`
	Fields   []core.IndexField `json:"fields" yaml:"fields"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index <id>",
		Short: "Map one catalog record to its search index fields",
		Long: `Map a published catalog object to the fields of its search index document.

Fields come from the built-in object mapper, or from the Starlark script
configured as index.script (a file or "preset:<name>").`,
		Example: `  # Show the index fields of object 4711
  ingrid-dsc index 4711

  # Use an index script
  ingrid-dsc index 4711 --index-script scripts/index.star`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0])
		},
	}
}

func runIndex(cmd *cobra.Command, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := cmdCtx.Engine.MapIndex(cmd.Context(), id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	fields := doc.Fields()
	if fields == nil {
		fields = []core.IndexField{}
	}
	if handled, err := r.Data(indexResult{RecordID: id, Fields: fields}); handled {
		return err
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Name, f.Value})
	}

	r.Header(1, "Index fields of record "+id)
	r.Table([]string{"Field", "Value"}, rows)
	return nil
}
