package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/balls/internal/analysis"
	"github.com/san-kum/balls/internal/export"
	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/storage"
	"github.com/san-kum/balls/internal/viz"
)

var (
	bodyIndex  int
	frameIndex int
	svgScale   float64
	outFile    string
)

// inspectCommands read saved runs back from the data directory.
func inspectCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot total energy and a body's height",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "height against vertical velocity of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportMsgpackCmd := &cobra.Command{
		Use:   "export-msgpack [run_id] [file]",
		Short: "export run data to msgpack",
		Args:  cobra.ExactArgs(2),
		RunE:  exportMsgpack,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id] [file]",
		Short: "render a frame, or a body's trajectory with --body, to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&bodyIndex, "body", -1, "draw the trajectory of this body instead of a frame")
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index, negative counts from the end")
	svgCmd.Flags().Float64Var(&svgScale, "scale", 1, "pixels per world unit")
	svgCmd.Flags().StringVar(&themeName, "theme", "", "color theme")

	return []*cobra.Command{listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportJSONCmd, exportMsgpackCmd, exportCSVCmd, svgCmd}
}

func openStore() *storage.Store {
	st := storage.New(dataDir)
	st.SetLogger(logger)
	return st
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, []float64, error) {
	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, times, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tBODIES\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%gs\t%d\t%.2e\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(frames))

	energy := analysis.TotalEnergy(frames, meta.Gravity)
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	height := analysis.Series(frames, bodyIndex, analysis.Height)
	if allNaN(height) {
		return fmt.Errorf("body %d not present in run %s", bodyIndex, meta.ID)
	}
	fmt.Println(asciigraph.Plot(height,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("body %d height", bodyIndex)),
	))
	return nil
}

func allNaN(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.PhasePortrait(frames, bodyIndex)
	if len(portrait.Points) == 0 {
		return fmt.Errorf("body %d not present in run %s", bodyIndex, meta.ID)
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("body %d: x = height, y = vertical velocity\n\n", bodyIndex)
	fmt.Println(portrait.ASCII(70, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	height := analysis.Series(frames, bodyIndex, analysis.Height)
	for _, h := range height {
		if math.IsNaN(h) {
			return fmt.Errorf("body %d is not present in every frame of %s", bodyIndex, meta.ID)
		}
	}
	if len(times) < 4 {
		return fmt.Errorf("run %s has too few frames to analyze", meta.ID)
	}

	fmt.Printf("bounce analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s, body %d\n\n", meta.Preset, bodyIndex)

	ps := analysis.PowerSpectrum(height)
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (height)"),
	))
	fmt.Println()

	sampleDt := times[1] - times[0]
	hz, mag := analysis.DominantFrequency(height, sampleDt)
	fmt.Printf("dominant frequency: %.4f Hz (magnitude %.2f)\n", hz, mag)
	if hz > 0 {
		fmt.Printf("dominant period: %.4f s\n", 1/hz)
	}

	bounces := analysis.Bounces(frames, times, bodyIndex)
	fmt.Printf("floor bounces: %d\n", len(bounces))
	if mean := analysis.MeanInterval(bounces); mean > 0 {
		fmt.Printf("mean bounce interval: %.4f s\n", mean)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := openStore().Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := openStore().Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	logger.Info("exported json", "run", data.ID, "file", outFile)
	return nil
}

func exportMsgpack(cmd *cobra.Command, args []string) error {
	data, err := openStore().Export(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportMsgpack(args[1], data); err != nil {
		return err
	}
	logger.Info("exported msgpack", "run", data.ID, "file", args[1], "frames", len(data.Frames))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	frames, times, err := openStore().LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteFrames(os.Stdout, frames, times)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	theme := viz.CurrentTheme
	if themeName != "" {
		theme = viz.GetTheme(themeName)
	}
	arena := physics.CenteredArena(meta.Width, meta.Height)

	var svg string
	if bodyIndex >= 0 {
		svg = export.TrajectoryToSVG(frames, bodyIndex, arena, svgScale, theme)
	} else {
		i := frameIndex
		if i < 0 {
			i += len(frames)
		}
		if i < 0 || i >= len(frames) {
			return fmt.Errorf("frame %d out of range (run has %d)", frameIndex, len(frames))
		}
		svg = export.FrameToSVG(frames[i], arena, svgScale, theme)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw at scale %v", svgScale)
	}

	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("wrote svg", "run", meta.ID, "file", args[1])
	return nil
}
