package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLoggerTo(&out, &errOut, "test", false)

	l.Infof("hello %d", 42)
	l.Warnf("careful")
	l.Errorf("broken")
	l.Debugf("hidden")

	assert.Contains(t, out.String(), "[test] INFO: hello 42")
	assert.Contains(t, errOut.String(), "[test] WARN: careful")
	assert.Contains(t, errOut.String(), "[test] ERROR: broken")
	assert.NotContains(t, out.String(), "hidden")
}

func TestDefaultLogger_DebugEnabled(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLoggerTo(&out, &errOut, "test", true)

	l.Debugf("visible %s", "now")

	assert.Contains(t, out.String(), "DEBUG: visible now")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLoggerTo(&out, &errOut, "", false)

	l.Infof("plain")

	if strings.Contains(out.String(), "[") {
		t.Errorf("unexpected prefix brackets in %q", out.String())
	}
	assert.Contains(t, out.String(), "INFO: plain")
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNopLogger()
	l.Debugf("a")
	l.Infof("b")
	l.Warnf("c")
	l.Errorf("d")
}
