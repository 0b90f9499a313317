package cli

import (
	"bytes"
	"strings"
	"testing"

	"devcert/internal/mkcert"
)

func TestStepRecorderKeepsLastState(t *testing.T) {
	rec := newStepRecorder()
	rec.Step(mkcert.StepBinary, mkcert.StatusDownloading, "mkcert 1.4.4")
	rec.Step(mkcert.StepCertificate, mkcert.StatusGenerating, "localhost")
	rec.Step(mkcert.StepBinary, mkcert.StatusComplete, "mkcert 1.4.4")

	keys := rec.keys()
	if len(keys) != 2 || keys[0] != mkcert.StepBinary || keys[1] != mkcert.StepCertificate {
		t.Fatalf("keys = %v, want binary then certificate", keys)
	}

	st, ok := rec.get(mkcert.StepBinary)
	if !ok || st.Status != mkcert.StatusComplete {
		t.Errorf("binary state = %+v, want the last reported status", st)
	}

	snap := rec.snapshot()
	if len(snap) != 2 || snap[mkcert.StepCertificate].Detail != "localhost" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRelayReporterSwapsTarget(t *testing.T) {
	relay := &relayReporter{}
	// No target attached yet; must be a no-op.
	relay.Step(mkcert.StepBinary, mkcert.StatusDownloading, "")

	first := newStepRecorder()
	relay.Set(first)
	relay.Step(mkcert.StepBinary, mkcert.StatusComplete, "mkcert 1.4.4")

	second := newStepRecorder()
	relay.Set(multiReporter{first, second})
	relay.Step(mkcert.StepCertificate, mkcert.StatusGenerating, "localhost")

	if _, ok := first.get(mkcert.StepCertificate); !ok {
		t.Errorf("first recorder missed the fanned-out step")
	}
	if _, ok := second.get(mkcert.StepCertificate); !ok {
		t.Errorf("second recorder missed the step")
	}
	if _, ok := second.get(mkcert.StepBinary); ok {
		t.Errorf("second recorder saw a step sent before it was attached")
	}
}

func TestBuildInstallProgressModelSeedsBinaryRow(t *testing.T) {
	steps := newStepRecorder()
	steps.Step(mkcert.StepBinary, mkcert.StatusComplete, "mkcert 1.4.4")

	model := buildInstallProgressModel([]string{"localhost", "::1"}, steps)
	view := model.View()

	for _, want := range []string{"STEP", "STATUS", "DETAIL", "binary", "complete", "mkcert 1.4.4", "ca", "certificate", "pending", "localhost ::1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBuildInstallProgressModelWithoutBinaryStep(t *testing.T) {
	model := buildInstallProgressModel([]string{"localhost"}, newStepRecorder())
	view := model.View()

	if !strings.Contains(view, "pending") {
		t.Errorf("binary row should start pending when init reported nothing:\n%s", view)
	}
}

func TestInstallStepFieldsDashesEmptyDetail(t *testing.T) {
	fields := installStepFields(mkcert.StatusSkipped, "")
	if fields["STATUS"] != mkcert.StatusSkipped {
		t.Errorf("STATUS = %q", fields["STATUS"])
	}
	if fields["DETAIL"] != "-" {
		t.Errorf("DETAIL = %q, want dash for empty detail", fields["DETAIL"])
	}
}

func TestPrintInstallSummaryShowsDecision(t *testing.T) {
	s := installSummary{
		CertFile: "/tmp/cert.pem",
		KeyFile:  "/tmp/dev.pem",
		Hosts:    []string{"localhost", "::1"},
		Action:   mkcert.ActionRegenerated,
		Reason:   mkcert.ReasonHostsChanged,
	}

	var buf bytes.Buffer
	printInstallSummary(&buf, s)
	out := buf.String()
	for _, want := range []string{"/tmp/cert.pem", "/tmp/dev.pem", "localhost, ::1", "regenerated (host list changed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	// Serving existing files without a renew decision prints no action line.
	buf.Reset()
	s.Action, s.Reason = mkcert.ActionUnchanged, ""
	printInstallSummary(&buf, s)
	if strings.Contains(buf.String(), "Action:") {
		t.Errorf("unexpected action line:\n%s", buf.String())
	}
}
