package justify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	act  = models.ActionDecision{Type: models.ActionHVACAdjustment, Details: "reduce", EstimatedSavingsKWh: 20}
	none = models.ActionDecision{Type: models.ActionNone}
)

func TestTemplateJustifier_Languages(t *testing.T) {
	j := NewTemplateJustifier(DefaultCatalog())

	tests := []struct {
		lang     string
		decision models.ActionDecision
		prefix   string
	}{
		{"en", act, "Strategic Decision:"},
		{"en", none, "No action is required"},
		{"es", act, "Decisión Estratégica:"},
		{"es", none, "No se requiere ninguna acción"},
		{"pt", act, "Decisão Estratégica:"},
		{"pt", none, "Nenhuma ação requerida"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+string(tt.decision.Type), func(t *testing.T) {
			text, err := j.Justify(context.Background(), Input{Decision: tt.decision, Language: tt.lang})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(text, tt.prefix), text)
		})
	}
}

func TestTemplateJustifier_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	j := NewTemplateJustifier(nil)
	en := DefaultCatalog().Lookup("en")

	for _, lang := range []string{"de", "", "xx-YY"} {
		text, err := j.Justify(context.Background(), Input{Decision: act, Language: lang})
		require.NoError(t, err)
		assert.Equal(t, en.Action, text)

		text, err = j.Justify(context.Background(), Input{Decision: none, Language: lang})
		require.NoError(t, err)
		assert.Equal(t, en.None, text)
	}
}

func TestTemplateJustifier_ZeroDecisionIsNone(t *testing.T) {
	j := NewTemplateJustifier(nil)

	text, err := j.Justify(context.Background(), Input{Language: "pt"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Lookup("pt").None, text)
}

func TestCatalog_Overrides(t *testing.T) {
	c := NewCatalog(map[string]config.LanguageStrings{
		"FR": {Action: "Action recommandée.", None: "Aucune action."},
		"pt": {None: "Tudo certo."},
	})

	assert.True(t, c.Has("fr"))
	assert.Equal(t, "Action recommandée.", c.Lookup("fr").Action)
	assert.Equal(t, DefaultCatalog().Lookup("en").Success, c.Lookup("fr").Success)

	assert.Equal(t, "Tudo certo.", c.Lookup("pt").None)
	assert.Equal(t, DefaultCatalog().Lookup("pt").Action, c.Lookup("pt").Action)

	assert.ElementsMatch(t, []string{"en", "es", "pt", "fr"}, c.Languages())
	assert.False(t, DefaultCatalog().Has("fr"))
}

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestGenerativeJustifier_UsesModelReply(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	completer := &fakeCompleter{reply: "  Turn the HVAC down now.  "}
	j := NewGenerativeJustifier(completer, NewTemplateJustifier(nil), 0, logger)

	text, err := j.Justify(context.Background(), Input{
		Decision:     act,
		TempForecast: []float64{30, 29},
		Limits:       models.Limits{MaxTemp: 24, MinComfortTemp: 21},
		Language:     "ES",
	})
	require.NoError(t, err)

	assert.Equal(t, "Turn the HVAC down now.", text)
	assert.Equal(t, systemPrompt, completer.system)
	assert.Contains(t, completer.user, `"language":"es"`)
	assert.Contains(t, completer.user, `"action":"HVAC_Adjustment"`)
	assert.Contains(t, completer.user, `"estimated_savings_kwh":20`)
	assert.Equal(t, "generative", j.Name())
}

func TestGenerativeJustifier_FallsBack(t *testing.T) {
	for name, completer := range map[string]*fakeCompleter{
		"error": {err: errors.New("quota exceeded")},
		"empty": {reply: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			j := NewGenerativeJustifier(completer, NewTemplateJustifier(nil), 0, logger)

			text, err := j.Justify(context.Background(), Input{Decision: none, Language: "pt"})
			require.NoError(t, err)

			assert.Equal(t, DefaultCatalog().Lookup("pt").None, text)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}

func TestNew_Modes(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	j, err := New(config.JustificationConfig{Mode: "template"}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "template", j.Name())

	j, err = New(config.JustificationConfig{}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "template", j.Name())

	j, err = New(config.JustificationConfig{Mode: "generative"}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "template", j.Name())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	j, err = New(config.JustificationConfig{Mode: "generative", APIKey: "sk-test", Model: "gpt-4o-mini", Timeout: 5}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "generative", j.Name())

	_, err = New(config.JustificationConfig{Mode: "oracle"}, nil, logger)
	assert.Error(t, err)
}

func TestNew_TemplateModeWarnsWithoutKey(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	_, err := New(config.JustificationConfig{Mode: "template"}, nil, logger)
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "no API key")

	hook.Reset()
	_, err = New(config.JustificationConfig{Mode: "template", APIKey: "sk-test"}, nil, logger)
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}
