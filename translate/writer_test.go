package translate_test

import (
	"bytes"
	"testing"

	"github.com/jcorbin/gosteno/dict"
	"github.com/jcorbin/gosteno/internal/flushio"
	"github.com/jcorbin/gosteno/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*translate.Writer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return translate.NewWriter(flushio.NewWriteFlusher(&buf)), &buf
}

func parseValue(t *testing.T, raw string) *dict.Value {
	t.Helper()
	v, err := dict.Parse(raw)
	require.NoError(t, err, "parse %q", raw)
	return &v
}

func applyValue(t *testing.T, w *translate.Writer, raw string) {
	t.Helper()
	v := parseValue(t, raw)
	require.NoError(t, w.Apply(translate.Translation{Writes: []translate.Emission{{Value: v}}}))
}

func TestWriter_plainWordsGetLeadingSpace(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "Batata")
	applyValue(t, w, "Tomate")
	assert.Equal(t, " Batata Tomate", buf.String())
}

func TestWriter_rawTextHasNoLeadingSpace(t *testing.T) {
	w, buf := newTestWriter(t)
	require.NoError(t, w.Apply(translate.Translation{Writes: []translate.Emission{{RawText: "S-"}}}))
	assert.Equal(t, "S-", buf.String())
}

func TestWriter_attachPrefixSuppressesOwnLeadingSpace(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "jump")
	applyValue(t, w, "{^ing}")
	assert.Equal(t, " jumping", buf.String())
}

func TestWriter_attachSuffixSuppressesNextLeadingSpace(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{un^}")
	applyValue(t, w, "happy")
	assert.Equal(t, " unhappy", buf.String())
}

func TestWriter_attachInfixSuppressesBothSides(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "small")
	applyValue(t, w, "{^-^}")
	applyValue(t, w, "caps")
	assert.Equal(t, " small-caps", buf.String())
}

func TestWriter_glueChainsOnlyBetweenConsecutiveGlues(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{&a}")
	applyValue(t, w, "{&b}")
	applyValue(t, w, "word")
	applyValue(t, w, "{&c}")
	assert.Equal(t, " ab word c", buf.String())
}

func TestWriter_capitalizeNextAppliesOnce(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{-|}")
	applyValue(t, w, "hello")
	applyValue(t, w, "world")
	assert.Equal(t, " Hello world", buf.String())
}

func TestWriter_uppercaseNextWordUppercasesWholeWord(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{<}")
	applyValue(t, w, "shout")
	applyValue(t, w, "quiet")
	assert.Equal(t, " SHOUT quiet", buf.String())
}

func TestWriter_capsLockModeTogglesUntilToggledOff(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{#Caps_Lock}")
	applyValue(t, w, "loud")
	applyValue(t, w, "still")
	applyValue(t, w, "{#Caps_Lock}")
	applyValue(t, w, "normal")
	assert.Equal(t, " LOUD STILL normal", buf.String())
}

func TestWriter_carryCapitalizationKeepsPendingFlagAlive(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{-|}")
	applyValue(t, w, "{~|mc}")
	applyValue(t, w, "donald")
	assert.Equal(t, " Mc Donald", buf.String())
}

func TestWriter_currencyRendersPrefixAndSuffix(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{*($c.00)}")
	assert.Equal(t, " $.00", buf.String())
}

func TestWriter_conditionalPicksBranchByRegexOnRaw(t *testing.T) {
	// The regex is matched against the entry's own raw text, so a pattern
	// that literally occurs in the entry (trivially, inside its own regex
	// field) picks the true branch.
	w, buf := newTestWriter(t)
	applyValue(t, w, "{=yes/Y/N}")
	assert.Equal(t, " Y", buf.String())
}

func TestWriter_conditionalFalseBranchWhenRegexAbsent(t *testing.T) {
	// An anchored regex that does not match the entry's own literal raw
	// text (which always contains the regex's own source as a substring)
	// takes the false branch.
	w, buf := newTestWriter(t)
	applyValue(t, w, "{=^zzz$/Y/N}")
	assert.Equal(t, " N", buf.String())
}

func TestWriter_commandPassesThroughNameDoNothingProducesNoOutput(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "{#Escape}")
	applyValue(t, w, "{}")
	assert.Equal(t, " Escape", buf.String())
}

func TestWriter_revertRetractsExactByteCount(t *testing.T) {
	w, buf := newTestWriter(t)
	applyValue(t, w, "Batata")
	require.NoError(t, w.Apply(translate.Translation{Reverts: []translate.Emission{{Value: parseValue(t, "Batata")}}}))
	got := simulateBuffer(nil, buf.Bytes())
	assert.Equal(t, "", string(got))
}
