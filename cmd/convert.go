// =============================================================================
// SAS7BDAT Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts a single file.
//
// COMMAND USAGE:
//   converter convert <format> <source> <destination> [flags]
//
// FLAGS (xml only):
//   --root-node   : Name of the document element (default from config, "root")
//   --record-node : Name of the per-row element (default from config, "item")
//   --xsd         : Also write an XSD describing the generated document
//
// =============================================================================

package cmd

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/xmlwriter"
	"github.com/ginjaninja78/sas7bdat-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// rootNode overrides the XML root element name.
var rootNode string

// recordNode overrides the XML record element name.
var recordNode string

// xsdPath is where to write the XSD for an XML conversion.
var xsdPath string

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert <format> <source> <destination>",
	Short: "Convert a single SAS file",
	Long: `Convert one .sas7bdat file into csv, excel, json, xml or parquet.

The destination extension must match the format (.csv, .xlsx, .json, .xml,
.parquet). Parquet output requires a binary built with -tags parquet.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args[0], args[1], args[2])
	},
}

// init registers the convert command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&rootNode, "root-node", "", "XML root element name")
	convertCmd.Flags().StringVar(&recordNode, "record-node", "", "XML record element name")
	convertCmd.Flags().StringVar(&xsdPath, "xsd", "", "Also write an XSD schema for XML output to this path")
}

// runConvert converts one file and prints the result.
func runConvert(formatName, source, destination string) error {
	spec, err := converter.LookupFormat(formatName)
	if err != nil {
		return err
	}
	if spec.Name != converter.XML && (rootNode != "" || recordNode != "" || xsdPath != "") {
		return errors.New("--root-node, --record-node and --xsd apply to xml only")
	}

	conv, parser, err := newConverter()
	if err != nil {
		return err
	}

	start := time.Now()
	markup := &converter.MarkupOptions{RootNodeName: rootNode, RecordNodeName: recordNode}
	err = conv.Convert(spec.Name, source, destination, markup)

	outcome := converter.Outcome{Source: source, Destination: destination, Err: err}
	printOutcomes(spec.Name, []converter.Outcome{outcome}, time.Since(start))
	if err != nil {
		return err
	}

	if xsdPath != "" {
		table, err := parser.Parse(source)
		if err != nil {
			return err
		}
		options := converter.SettingsFromConfig(cfg).XML
		if rootNode != "" {
			options.RootNodeName = rootNode
		}
		if recordNode != "" {
			options.RecordNodeName = recordNode
		}
		err = utils.WriteFileAtomic(xsdPath, func(w io.Writer) error {
			_, err := w.Write(xmlwriter.GenerateXSD(table, options))
			return err
		})
		if err != nil {
			return errors.Wrap(err, "failed to write XSD")
		}
		log.Infow("Wrote XSD", "path", xsdPath)
	}

	return nil
}
