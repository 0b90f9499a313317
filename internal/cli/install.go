package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"devcert/internal/logx"
	"devcert/internal/mkcert"
	"devcert/internal/tui"
)

var (
	installForce      bool
	installNoProgress bool
)

// defaultHosts covers the addresses a local dev server usually binds.
var defaultHosts = []string{"localhost", "127.0.0.1", "::1"}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [host...]",
		Short: "Create or renew the trusted development certificate",
		Long: `Install makes sure a trusted certificate covering the given hosts exists
in the save directory, downloading mkcert first if needed. Without
arguments it covers localhost, 127.0.0.1 and ::1. The certificate is only
regenerated when the host list or the files on disk changed.`,
		RunE: runInstall,
	}

	cmd.Flags().BoolVar(&installForce, "force", false, "Regenerate the certificate even when nothing changed")
	cmd.Flags().BoolVar(&installNoProgress, "no-progress", false, "Disable the interactive progress display")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	hosts := args
	if len(hosts) == 0 {
		hosts = defaultHosts
	}

	status := tui.NewStatusWriter(cmd.ErrOrStderr())
	defer status.Stop()

	status.Update("Resolving save directory...")
	cfg, p, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	if installForce {
		cfg.Force = true
	}

	logger, closer, err := logx.New(p, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Debugf("install: hosts=%s save=%s", strings.Join(hosts, ","), p.Root)

	relay := &relayReporter{}
	steps := newStepRecorder()
	relay.Set(steps)

	mgr, err := mkcert.NewManager(mkcert.Options{
		Logger:   logger,
		Config:   cfg,
		Paths:    p,
		Reporter: relay,
	})
	if err != nil {
		return err
	}

	status.Update("Preparing mkcert...")
	if err := mgr.Init(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, installNoProgress, outputJSON)
	status.Stop() // Hand off to TUI or plain output

	var (
		res     mkcert.InstallResult
		workErr error
	)
	work := func(send func(tea.Msg)) {
		if send != nil {
			relay.Set(multiReporter{steps, tui.NewStepReporter(send, installStepFields)})
		}
		res, workErr = mgr.Install(ctx, hosts)
		if workErr != nil && send != nil {
			send(tui.ErrorMsg{Err: workErr})
		}
	}

	if mode == tui.ModeTUI {
		fmt.Fprintf(out, "Save directory: %s\n", p.Root)
		model := buildInstallProgressModel(hosts, steps)
		if err := tui.RunWithWork(out, model, work); err != nil {
			return err
		}
	} else {
		work(nil)
	}
	if workErr != nil {
		return workErr
	}

	summary := installSummary{
		SaveDir:  p.Root,
		Source:   cfg.Source,
		Version:  mgr.Version(),
		Action:   res.Action,
		Reason:   res.Reason,
		Hosts:    hosts,
		KeyFile:  p.KeyFile,
		CertFile: p.CertFile,
		Steps:    steps.snapshot(),
	}

	if mode == tui.ModeJSON {
		return writeInstallJSON(out, summary)
	}
	if mode == tui.ModePlain {
		writeInstallTable(out, steps)
	}
	printInstallSummary(out, summary)
	return nil
}

type installSummary struct {
	SaveDir  string               `json:"save_dir"`
	Source   string               `json:"source"`
	Version  string               `json:"mkcert_version,omitempty"`
	Action   string               `json:"action"`
	Reason   string               `json:"reason,omitempty"`
	Hosts    []string             `json:"hosts"`
	KeyFile  string               `json:"key_file"`
	CertFile string               `json:"cert_file"`
	Steps    map[string]stepState `json:"steps"`
}

var installColumns = []tui.Column{
	{Header: "STEP", Width: 12},
	{Header: "STATUS", Width: 12, Status: true},
	{Header: "DETAIL", Width: 44},
}

func buildInstallProgressModel(hosts []string, steps *stepRecorder) tui.ProgressModel {
	model := tui.NewProgressModel(installColumns)

	// The binary step already ran under the setup spinner; seed its row
	// with the recorded outcome so the table starts truthful.
	binaryStatus, binaryDetail := "pending", "-"
	if st, ok := steps.get(mkcert.StepBinary); ok {
		binaryStatus = st.Status
		binaryDetail = tui.NonEmptyOrDash(st.Detail)
	}
	model.AddRow(mkcert.StepBinary, []string{mkcert.StepBinary, binaryStatus, binaryDetail})
	model.AddRow(mkcert.StepCA, []string{mkcert.StepCA, "pending", "-"})
	model.AddRow(mkcert.StepCertificate, []string{mkcert.StepCertificate, "pending", strings.Join(hosts, " ")})
	return model
}

func installStepFields(status, detail string) map[string]string {
	return map[string]string{
		"STATUS": status,
		"DETAIL": tui.NonEmptyOrDash(detail),
	}
}

func writeInstallTable(out io.Writer, steps *stepRecorder) {
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTATUS\tDETAIL")
	for _, key := range steps.keys() {
		st, _ := steps.get(key)
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, st.Status, tui.NonEmptyOrDash(st.Detail))
	}
	w.Flush()
}

func writeInstallJSON(out io.Writer, summary installSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode install json: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func printInstallSummary(out io.Writer, s installSummary) {
	fmt.Fprintf(out, "\nCertificate: %s\n", s.CertFile)
	fmt.Fprintf(out, "Key:         %s\n", s.KeyFile)
	fmt.Fprintf(out, "Hosts:       %s\n", strings.Join(s.Hosts, ", "))
	if s.Reason != "" {
		fmt.Fprintf(out, "Action:      %s (%s)\n", s.Action, s.Reason)
	}
}

type stepState struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// stepRecorder keeps the last status and detail per step so the final
// summary reflects what actually happened, whichever mode rendered it.
type stepRecorder struct {
	mu    sync.Mutex
	order []string
	steps map[string]stepState
}

func newStepRecorder() *stepRecorder {
	return &stepRecorder{steps: make(map[string]stepState)}
}

func (r *stepRecorder) Step(key, status, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[key]; !ok {
		r.order = append(r.order, key)
	}
	r.steps[key] = stepState{Status: status, Detail: detail}
}

func (r *stepRecorder) get(key string) (stepState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.steps[key]
	return st, ok
}

func (r *stepRecorder) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *stepRecorder) snapshot() map[string]stepState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]stepState, len(r.steps))
	for k, v := range r.steps {
		out[k] = v
	}
	return out
}

// relayReporter forwards step updates to a swappable target so the setup
// spinner phase can hand off to the progress table mid-run.
type relayReporter struct {
	mu     sync.Mutex
	target mkcert.Reporter
}

func (r *relayReporter) Set(target mkcert.Reporter) {
	r.mu.Lock()
	r.target = target
	r.mu.Unlock()
}

func (r *relayReporter) Step(key, status, detail string) {
	r.mu.Lock()
	target := r.target
	r.mu.Unlock()
	if target != nil {
		target.Step(key, status, detail)
	}
}

type multiReporter []mkcert.Reporter

func (m multiReporter) Step(key, status, detail string) {
	for _, r := range m {
		r.Step(key, status, detail)
	}
}
