package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/repoman/internal/pipeline"
)

func TestSelectSymbols(t *testing.T) {
	tests := map[string]struct {
		caps          TerminalCapabilities
		wantCheckmark string
		wantSet       int
	}{
		"unicode terminal": {caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true}, wantCheckmark: "✓", wantSet: 14},
		"ascii":            {caps: TerminalCapabilities{}, wantCheckmark: "[OK]", wantSet: 9},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := SelectSymbols(tt.caps)
			assert.Equal(t, tt.wantCheckmark, s.Checkmark)
			assert.Equal(t, tt.wantSet, s.SpinnerSet)
		})
	}
}

func TestDetectTerminalCapabilities_NonTerminal(t *testing.T) {
	caps := DetectTerminalCapabilities(&bytes.Buffer{})
	assert.False(t, caps.IsTTY)
	assert.False(t, caps.SupportsColor)
	assert.Zero(t, caps.Width)
}

func TestDisplay_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, TerminalCapabilities{}, false)

	d.StageStarted(pipeline.StageExistenceCheck)
	d.StageCompleted(pipeline.StageExistenceCheck, "/repos/proj")
	d.StageSkipped(pipeline.StageTemplateApply, "no template requested")
	d.StageStarted(pipeline.StageVCSCommit)
	d.Warn(pipeline.StageVCSCommit, "initial commit failed")
	d.StageCompleted(pipeline.StageVCSCommit, "")
	d.StageStarted(pipeline.StageRemoteCreate)
	d.StageFailed(pipeline.StageRemoteCreate, errors.New("boom"))

	assert.Equal(t, "[OK] Checking target directory (/repos/proj)\n"+
		"[WARN] initial commit failed\n"+
		"[OK] Creating initial commit\n"+
		"[FAIL] Creating remote repository\n", buf.String())
}

func TestDisplay_VerboseShowsSkipped(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, TerminalCapabilities{}, true)

	d.StageSkipped(pipeline.StageRemotePush, "remote provisioning disabled")
	assert.Equal(t, "[SKIP] Pushing to remote: remote provisioning disabled\n", buf.String())
}

func TestDisplay_Elapsed(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, TerminalCapabilities{}, false)
	clock := time.Unix(0, 0)
	d.now = func() time.Time { return clock }

	d.StageStarted(pipeline.StageRemotePush)
	clock = clock.Add(2500 * time.Millisecond)
	d.StageCompleted(pipeline.StageRemotePush, "")

	assert.Equal(t, "[OK] Pushing to remote [2.5s]\n", buf.String())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Applying template", Label(pipeline.StageTemplateApply))
	assert.Equal(t, "custom", Label(pipeline.Stage("custom")))
}
