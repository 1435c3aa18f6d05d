package main

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/flaneur2020/hip-diff/hipdiff"
	"github.com/flaneur2020/hip-diff/hipdiff/hipfile"
)

func TestRenderReportLayout(t *testing.T) {
	o := &hipfile.Archive{}
	m := &hipfile.Archive{
		Counts: hipfile.Counts{AssetCount: 1},
		Assets: []hipfile.Asset{{ID: 9, Debug: &hipfile.AssetDebug{Name: "boulder"}}},
	}
	report := hipdiff.Diff(o, m, hipdiff.Options{})

	var buf bytes.Buffer
	renderReport(&buf, report, "old.hip", "new.hip", 20, "never")

	want := []string{
		fmt.Sprintf("%-20s%-20s", "old.hip", "new.hip"),
		strings.Repeat("=", 40),
		fmt.Sprintf("%-20s%-20s", "PCNT", "PCNT"),
		fmt.Sprintf("%-20s%-20s", "  assetCount: 0", "  assetCount: 1"),
		fmt.Sprintf("%-20s%-20s", "Added assets (1)", "Added assets (1)"),
		fmt.Sprintf("%-20s%-20s", "", "  boulder"),
		"",
		"1 addition(s), 0 deletion(s), 1 modification(s)",
		"",
	}
	got := strings.Split(buf.String(), "\n")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rendered output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderReportWidthGrowsToFitNames(t *testing.T) {
	report := hipdiff.Diff(&hipfile.Archive{}, &hipfile.Archive{}, hipdiff.Options{})
	long := strings.Repeat("o", 30) + ".hip"

	var buf bytes.Buffer
	renderReport(&buf, report, long, "m.hip", 20, "never")
	lines := strings.Split(buf.String(), "\n")
	if want := (len(long) + 1) * 2; len(lines[1]) != want {
		t.Fatalf("ruler width = %d, want %d", len(lines[1]), want)
	}

	// The right-hand name widens the columns too.
	buf.Reset()
	renderReport(&buf, report, "o.hip", long, 20, "never")
	lines = strings.Split(buf.String(), "\n")
	if want := (len(long) + 1) * 2; len(lines[1]) != want {
		t.Fatalf("ruler width = %d, want %d", len(lines[1]), want)
	}
}
