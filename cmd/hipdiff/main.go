package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flaneur2020/hip-diff/hipdiff"
	"github.com/flaneur2020/hip-diff/hipdiff/hipfile"
	"github.com/flaneur2020/hip-diff/hipdiff/logger"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const version = "1.0.0"

var (
	assetsOnly    bool
	detailed      bool
	checksumTrust bool
	diffOffsets   bool
	diffPluses    bool
	columnWidth   int
	color         = colorMode("auto")
	jsonOut       bool
	showProgress  bool
	verbose       bool

	lsLayers  bool
	lsDigests bool
)

// colorMode is the --color setting. It implements pflag.Value so bad
// values fail at parse time instead of falling through to "auto".
type colorMode string

var _ pflag.Value = (*colorMode)(nil)

func (c *colorMode) String() string { return string(*c) }

func (c *colorMode) Set(v string) error {
	switch v {
	case "auto", "always", "never":
		*c = colorMode(v)
		return nil
	}
	return fmt.Errorf("must be one of: auto, always, never")
}

func (c *colorMode) Type() string { return "string" }

func main() {
	rootCmd := &cobra.Command{
		Use:     "hipdiff <original HIP file> <modified HIP file>",
		Short:   "Compare two HIP archives",
		Args:    cobra.ExactArgs(2),
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLogLevel(logger.LogLevelDebug)
			}
		},
		Run: runDiff,
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&assetsOnly, "assets-only", "a", false, "Only show asset diffs")
	rootCmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "Detailed asset diffs (AHDR and ADBG records)")
	rootCmd.Flags().BoolVarP(&checksumTrust, "checksum", "c", false, "Ignore asset data if checksum matches")
	rootCmd.Flags().BoolVarP(&diffOffsets, "offsets", "o", false, "Diff asset offsets")
	rootCmd.Flags().BoolVarP(&diffPluses, "pluses", "p", false, "Diff asset pluses")
	rootCmd.Flags().IntVarP(&columnWidth, "width", "w", defaultColumnWidth, "Column width")
	rootCmd.Flags().Var(&color, "color", "Colorize output: auto, always or never")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON instead of columns")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar while loading")

	// ls command
	lsCmd := &cobra.Command{
		Use:   "ls <HIP file>",
		Short: "List the assets in an archive",
		Args:  cobra.ExactArgs(1),
		Run:   runLs,
	}
	lsCmd.Flags().BoolVar(&lsLayers, "layers", false, "List layers instead of assets")
	lsCmd.Flags().BoolVar(&lsDigests, "digests", false, "Append a payload digest column")

	// info command
	infoCmd := &cobra.Command{
		Use:   "info <HIP file>",
		Short: "Show the package header of an archive",
		Args:  cobra.ExactArgs(1),
		Run:   runInfo,
	}

	rootCmd.AddCommand(lsCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDiff(cmd *cobra.Command, args []string) {
	if err := applyConfigDefaults(cmd.Flags()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opath := args[0]
	mpath := args[1]

	original, err := loadArchive(opath, showProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	modified, err := loadArchive(mpath, showProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report := hipdiff.Diff(original, modified, hipdiff.Options{
		AssetsOnly:                  assetsOnly,
		Detailed:                    detailed,
		IgnoreDataIfChecksumMatches: checksumTrust,
		DiffOffsets:                 diffOffsets,
		DiffPluses:                  diffPluses,
	})

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	renderReport(os.Stdout, report, opath, mpath, columnWidth, string(color))
}

func runLs(cmd *cobra.Command, args []string) {
	archive, err := hipfile.LoadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if lsLayers {
		for i := range archive.Layers {
			l := &archive.Layers[i]
			line := fmt.Sprintf("%4d  type %-4d  %5d assets", i, l.Type, len(l.AssetIDs))
			if l.Debug != nil {
				line += fmt.Sprintf("  ldbg %d", l.Debug.Value)
			}
			fmt.Println(line)
		}
		return
	}

	for i := range archive.Assets {
		a := &archive.Assets[i]
		line := fmt.Sprintf("%08X  %s  %10d  %s", a.ID, hipfile.Tag(a.Type), a.Size, a.Name())
		if lsDigests {
			line += "  " + a.Digest().String()
		}
		fmt.Println(line)
	}
}

func runInfo(cmd *cobra.Command, args []string) {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	archive, err := hipfile.Load(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", path, err)
		os.Exit(1)
	}

	v := archive.Version
	c := archive.Counts
	fmt.Printf("file: %s\n", path)
	fmt.Printf("digest: %s\n", digest.FromBytes(data))
	fmt.Printf("version: sub 0x%X, client 0x%X, compat 0x%X\n", v.SubVersion, v.ClientVersion, v.CompatVersion)
	fmt.Printf("flags: 0x%X\n", archive.Flags)
	fmt.Printf("assets: %d (max size %d, max xform size %d)\n", c.AssetCount, c.MaxAssetSize, c.MaxXformAssetSize)
	fmt.Printf("layers: %d (max size %d)\n", c.LayerCount, c.MaxLayerSize)
	fmt.Printf("created: %s %q\n", formatTimestamp(archive.Created.Time), strings.TrimSuffix(archive.Created.Comment, "\n"))
	fmt.Printf("modified: %s\n", formatTimestamp(archive.Modified))
	if archive.Platform != nil {
		fmt.Printf("platform: 0x%08X [%s]\n", archive.Platform.ID, strings.Join(archive.Platform.Strings, ", "))
	}
	fmt.Printf("ainf: %d, linf: %d, dhdr: %d\n", archive.AssetInfo, archive.LayerInfo, archive.StreamHeader)
	fmt.Printf("packed data: %d bytes at offset %d\n", len(archive.PackedData), archive.DataOffset)
	for _, w := range archive.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func formatTimestamp(ts uint32) string {
	if ts == 0 {
		return "unset"
	}
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}
