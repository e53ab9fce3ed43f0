package formatter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"
)

// RunData is the printable view of a recorded bootstrap run.
type RunData struct {
	ID             string
	Result         string
	WorkDir        string
	Template       string
	Output         string
	TemplateDigest string
	OutputDigest   string
	Started        time.Time
	Ended          time.Time
	Steps          []StepData
}

type StepData struct {
	Name     string
	Command  string
	ExitCode int
	Err      string
	Duration time.Duration
}

func PrintRunStatus(data RunData) error {
	return FprintRunStatus(os.Stdout, data)
}

// FprintRunStatus writes a run record as an aligned header block
// followed by a step tree.
func FprintRunStatus(w io.Writer, data RunData) error {
	writer := tabwriter.NewWriter(w, 1, 1, 1, ' ', 0)

	fmt.Fprintf(writer, "%s:\t %s \n", "Run", data.ID)
	fmt.Fprintf(writer, "%s:\t %s \n", "Result", data.Result)
	fmt.Fprintf(writer, "%s:\t %s \n", "Working directory", data.WorkDir)
	fmt.Fprintf(writer, "%s:\t %s \n", "Template", data.Template)
	fmt.Fprintf(writer, "%s:\t %s \n", "Output", data.Output)
	if data.TemplateDigest != "" {
		fmt.Fprintf(writer, "%s:\t %s \n", "Template digest", data.TemplateDigest)
	}
	if data.OutputDigest != "" {
		fmt.Fprintf(writer, "%s:\t %s \n", "Output digest", data.OutputDigest)
	}
	fmt.Fprintf(writer, "%s:\t %s \n", "Started", data.Started.Format(time.RFC3339))
	fmt.Fprintf(writer, "%s:\t %s \n", "Duration", data.Ended.Sub(data.Started).Round(time.Millisecond).String())

	if err := writer.Flush(); err != nil {
		return err
	}

	steps := NewList()
	steps.Item("Steps:")
	for _, step := range data.Steps {
		steps.NewChild(fmt.Sprintf("%s: %s (%s)", step.Name, stepOutcome(step), step.Duration.Round(time.Millisecond)))
	}
	steps.PrintTo(w)

	return nil
}

func stepOutcome(step StepData) string {
	if step.ExitCode != 0 {
		return "exit " + strconv.Itoa(step.ExitCode)
	}
	if step.Err != "" {
		return step.Err
	}
	return "ok"
}
