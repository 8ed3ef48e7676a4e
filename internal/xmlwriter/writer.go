// =============================================================================
// SAS7BDAT Converter - XML Writer Module
// =============================================================================
//
// This module is responsible for generating XML documents from a parsed table.
// Each row becomes one record element and each column one child element.
//
// XML STRUCTURE:
//   The generated XML follows this nesting pattern:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <root>                       <!-- RootNodeName -->
//     <item>                     <!-- RecordNodeName, one per row -->
//       <name>Smith &amp; Co</name>
//       <amount>12.5</amount>
//       <visit>2020-01-02 00:00:00</visit>
//       <missing></missing>      <!-- Missing cells are empty -->
//     </item>
//   </root>
//
// RULES:
//   - Records appear in table order; children appear in column order.
//   - Text values escape & < > " and '. Numbers and dates are not escaped.
//   - Element names are written as given. The caller must supply names that
//     are valid XML.
//   - The document ends with the closing root tag and no trailing newline.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// RootNodeName is the name of the document element.
	// Default: "root"
	RootNodeName string

	// RecordNodeName is the name of the element wrapping each row.
	// Default: "item"
	RecordNodeName string

	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		RootNodeName:   "root",
		RecordNodeName: "item",
		Indent:         "  ",
		XMLVersion:     "1.0",
		Encoding:       "UTF-8",
	}
}

// applyDefaults fills unset fields from DefaultOptions.
func (o Options) applyDefaults() Options {
	d := DefaultOptions()
	if o.RootNodeName == "" {
		o.RootNodeName = d.RootNodeName
	}
	if o.RecordNodeName == "" {
		o.RecordNodeName = d.RecordNodeName
	}
	if o.Indent == "" {
		o.Indent = d.Indent
	}
	if o.XMLVersion == "" {
		o.XMLVersion = d.XMLVersion
	}
	if o.Encoding == "" {
		o.Encoding = d.Encoding
	}
	return o
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Write writes the XML document for table to w.
func Write(w io.Writer, table *types.Table, options Options) error {
	doc := Generate(table, options)
	if _, err := w.Write(doc); err != nil {
		return errors.Wrap(err, "failed to write XML")
	}
	return nil
}

// Generate creates the XML document for table.
//
// PARAMETERS:
//   - table: The parsed table.
//   - options: The generation options. Unset fields take their defaults.
//
// RETURNS:
//   - The XML document as a byte slice.
//
// GENERATION PROCESS:
//  1. Write the declaration and the opening root tag
//  2. For each row, write one record block
//  3. Join the record blocks with newlines
//  4. Write the closing root tag
func Generate(table *types.Table, options Options) []byte {
	options = options.applyDefaults()

	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
		options.XMLVersion, options.Encoding))

	buffer.WriteString("<")
	buffer.WriteString(options.RootNodeName)
	buffer.WriteString(">\n")

	rows := table.RowCount()
	for i := 0; i < rows; i++ {
		if i > 0 {
			buffer.WriteString("\n")
		}
		writeRecord(&buffer, table, i, options)
	}
	if rows > 0 {
		buffer.WriteString("\n")
	}

	buffer.WriteString("</")
	buffer.WriteString(options.RootNodeName)
	buffer.WriteString(">")

	return buffer.Bytes()
}

// writeRecord writes one row as a record element without a trailing newline.
//
// STRUCTURE:
//
//	  <item>
//	    <col>value</col>
//	  </item>
func writeRecord(buffer *bytes.Buffer, table *types.Table, row int, options Options) {
	buffer.WriteString(options.Indent)
	buffer.WriteString("<")
	buffer.WriteString(options.RecordNodeName)
	buffer.WriteString(">\n")

	for _, col := range table.Columns {
		writeElement(buffer, col.Name, formatCell(col.Values[row]), strings.Repeat(options.Indent, 2))
	}

	buffer.WriteString(options.Indent)
	buffer.WriteString("</")
	buffer.WriteString(options.RecordNodeName)
	buffer.WriteString(">")
}

// writeElement writes a simple element with its text value on one line.
func writeElement(buffer *bytes.Buffer, name, value, indent string) {
	buffer.WriteString(indent)
	buffer.WriteString("<")
	buffer.WriteString(name)
	buffer.WriteString(">")
	buffer.WriteString(value)
	buffer.WriteString("</")
	buffer.WriteString(name)
	buffer.WriteString(">\n")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatCell renders a cell value. Only text is escaped.
func formatCell(v interface{}) string {
	if s, ok := v.(string); ok {
		return escapeXML(s)
	}
	return types.FormatValue(v)
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// XSD GENERATION
// =============================================================================

// GenerateXSD creates an XSD schema describing the document Generate
// produces for table.
//
// PARAMETERS:
//   - table: The parsed table. Only column names and types are used.
//   - options: The generation options, for the root and record names.
//
// RETURNS:
//   - The XSD document as a byte slice.
func GenerateXSD(table *types.Table, options Options) []byte {
	options = options.applyDefaults()

	var buffer bytes.Buffer

	buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
`)

	// Root element definition.
	buffer.WriteString(fmt.Sprintf(`  <xs:element name="%s">
    <xs:complexType>
      <xs:sequence>
        <xs:element ref="%s" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>

`, options.RootNodeName, options.RecordNodeName))

	// Record element definition.
	buffer.WriteString(fmt.Sprintf(`  <xs:element name="%s">
    <xs:complexType>
      <xs:sequence>
`, options.RecordNodeName))

	for _, col := range table.Columns {
		writeXSDElement(&buffer, col, 4)
	}

	buffer.WriteString(`      </xs:sequence>
    </xs:complexType>
  </xs:element>

</xs:schema>
`)

	return buffer.Bytes()
}

// writeXSDElement writes an XSD element definition for one column.
// Missing cells produce empty elements, so every type is a union with
// the empty string.
func writeXSDElement(buffer *bytes.Buffer, col types.Column, indentLevel int) {
	indent := strings.Repeat("  ", indentLevel)

	xsdType := getXSDType(col.Type)
	if xsdType == "xs:string" {
		buffer.WriteString(fmt.Sprintf("%s<xs:element name=\"%s\" type=\"xs:string\"/>\n", indent, col.Name))
		return
	}

	buffer.WriteString(fmt.Sprintf(`%s<xs:element name="%s">
%s  <xs:simpleType>
%s    <xs:union memberTypes="%s">
%s      <xs:simpleType>
%s        <xs:restriction base="xs:string">
%s          <xs:length value="0"/>
%s        </xs:restriction>
%s      </xs:simpleType>
%s    </xs:union>
%s  </xs:simpleType>
%s</xs:element>
`, indent, col.Name,
		indent, indent, xsdType,
		indent, indent, indent, indent, indent, indent, indent, indent))
}

// getXSDType maps column types to XSD types.
// Temporal cells use a space separator, which xs:dateTime rejects, so they
// are typed as strings.
func getXSDType(t types.ColumnType) string {
	if t == types.Numeric {
		return "xs:decimal"
	}
	return "xs:string"
}
