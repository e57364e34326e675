// Package export writes tracked facts in formats other tools read:
// iCalendar for calendars, CSV and TSV for spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/runnerr0/hamster/internal/storage"
)

// Supported formats.
const (
	FormatICal = "ical"
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
)

// ProductID identifies hamster as the producer of exported calendars.
const ProductID = "-//hamster//hamster time tracker//EN"

// Formats lists every supported format name.
func Formats() []string {
	return []string{FormatICal, FormatCSV, FormatTSV}
}

// Write renders facts to w in the named format.
func Write(w io.Writer, format string, facts []storage.Fact) error {
	switch strings.ToLower(format) {
	case FormatICal:
		return writeICal(w, facts)
	case FormatCSV:
		return writeDelimited(w, ',', facts)
	case FormatTSV:
		return writeDelimited(w, '\t', facts)
	default:
		return fmt.Errorf("unknown export format %q (use %s)", format, strings.Join(Formats(), ", "))
	}
}

func writeICal(w io.Writer, facts []storage.Fact) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, f := range facts {
		evt := cal.AddEvent(f.ID)
		evt.SetDtStampTime(f.End)
		evt.SetStartAt(f.Start)
		evt.SetEndAt(f.End)
		evt.SetSummary(f.Activity.String())
		if f.Description != "" {
			evt.SetDescription(f.Description)
		}
		if len(f.Tags) > 0 {
			evt.SetProperty(ical.ComponentPropertyCategories, strings.Join(f.Tags, ","))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// header is the column layout of CSV and TSV exports.
var header = []string{"id", "start", "end", "activity", "category", "tags", "description", "minutes"}

func writeDelimited(w io.Writer, comma rune, facts []storage.Fact) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, f := range facts {
		record := []string{
			f.ID,
			f.Start.Format(time.RFC3339),
			f.End.Format(time.RFC3339),
			f.Activity.Name,
			f.Activity.Category,
			strings.Join(f.Tags, " "),
			f.Description,
			strconv.FormatInt(int64(f.Duration()/time.Minute), 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
