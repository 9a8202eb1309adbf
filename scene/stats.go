package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Render a table with the buffer sizes of the described mesh.
func (desc *Description) Stats() string {
	mesh := &desc.Mesh

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", " ", fmtSize(mesh.Vertices, mesh.Colors, mesh.Indices)})
	table.Append([]string{"", "Vertices", fmt.Sprint(len(mesh.Vertices)), fmtSize(mesh.Vertices)})
	table.Append([]string{"", "Colors", fmt.Sprint(len(mesh.Colors)), fmtSize(mesh.Colors)})
	table.Append([]string{"", "Triangles", fmt.Sprint(len(mesh.Indices)), fmtSize(mesh.Indices)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Lights", "---", fmt.Sprint(len(desc.Lights)), fmtSize(desc.Lights)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(mesh.Vertices, mesh.Colors, mesh.Indices, desc.Lights), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
