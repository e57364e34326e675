package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var (
	headerColor = color.New(color.Bold)
	titleColor  = color.New(color.Bold, color.Underline)
	faintColor  = color.New(color.Faint)
)

// newTable returns a table with the column layout used by every command.
func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	return tbl
}

// printTitle prints an underlined section title.
func printTitle(title string) {
	fmt.Println(titleColor.Sprint(title))
}
