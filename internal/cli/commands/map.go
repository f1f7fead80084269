package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
)

// MapOptions holds options for the map command.
type MapOptions struct {
	File string
}

// idfResult is the machine-readable form of a mapped record.
type idfResult struct {
	RecordID       string `json:"record_id" yaml:"record_id"`
	FileIdentifier string `json:"file_identifier" yaml:"file_identifier"`
	IDF            string `json:"idf" yaml:"idf"`
}

// NewMapCommand creates the map command.
func NewMapCommand() *cobra.Command {
	opts := &MapOptions{}

	cmd := &cobra.Command{
		Use:   "map <id>",
		Short: "Map one catalog record to an IDF document",
		Long: `Map a published catalog object to its ISO 19139 IDF document.

The document is printed to standard output, or written to --file.
Records that are not published are reported as not found.`,
		Example: `  # Print the IDF document of object 4711
  ingrid-dsc map 4711

  # Write it to a file
  ingrid-dsc map 4711 --file 4711.xml

  # Wrap it in JSON with its file identifier
  ingrid-dsc map 4711 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Write the document to this file")

	return cmd
}

func runMap(cmd *cobra.Command, id string, opts *MapOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := cmdCtx.Engine.MapIDF(cmd.Context(), id)
	if err != nil {
		return err
	}
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	r := cmdCtx.Renderer
	fileID := engine.FileIdentifier(doc)

	if opts.File != "" {
		if err := os.WriteFile(opts.File, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.File, err)
		}
		r.Success(fmt.Sprintf("Mapped record %s (%s) to %s", id, fileID, opts.File))
		return nil
	}

	if handled, err := r.Data(idfResult{RecordID: id, FileIdentifier: fileID, IDF: string(data)}); handled {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, "Record "+id)
		r.StatusLine("file identifier", fileID, output.StatusNone)
		r.Println()
		r.Println("```xml")
		r.Println(string(data))
		r.Println("```")
		return nil
	}
	r.Println(string(data))
	return nil
}
