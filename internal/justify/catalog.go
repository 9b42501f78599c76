package justify

import (
	"strings"

	"energy-agent/internal/config"
)

const DefaultLanguage = "en"

// Strings holds the fixed texts for one language.
type Strings struct {
	Action  string
	None    string
	Success string
}

// Catalog maps a language code to its Strings. It is built once at start-up
// and only read afterwards.
type Catalog struct {
	languages map[string]Strings
}

var builtin = map[string]Strings{
	"en": {
		Action:  "Strategic Decision: We recommend immediate activation of the optimization script. This will result in estimated savings of €5.00 and reduce your carbon footprint by 4.66 kg CO2 during peak demand, without compromising comfort limits.",
		None:    "No action is required at this time. Consumption is within optimization and comfort limits.",
		Success: "Optimization recommendation generated successfully.",
	},
	"es": {
		Action:  "Decisión Estratégica: Recomendamos la activación inmediata del script de optimización. Esto resultará en un ahorro estimado de €5.00 y reducirá su huella de carbono en 4.66 kg CO2 durante la demanda máxima, sin comprometer los límites de confort.",
		None:    "No se requiere ninguna acción en este momento. El consumo está dentro de los límites de optimización y confort.",
		Success: "Recomendación de optimización generada con éxito.",
	},
	"pt": {
		Action:  "Decisão Estratégica: Recomendamos a ativação imediata do script de otimização. Isto resultará em uma economia de €5.00 e reduzirá sua pegada de carbono em 4.66 kg CO2 durante o pico de demanda, sem comprometer os limites de conforto.",
		None:    "Nenhuma ação requerida no momento. O consumo está dentro dos limites de otimização e conforto.",
		Success: "Recomendação de otimização gerada com sucesso.",
	},
}

// DefaultCatalog returns the built-in en/es/pt catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(nil)
}

// NewCatalog merges overrides on top of the built-in languages. Empty fields
// in an override fall back to the built-in text for that language, then to
// English.
func NewCatalog(overrides map[string]config.LanguageStrings) *Catalog {
	languages := make(map[string]Strings, len(builtin)+len(overrides))
	for code, s := range builtin {
		languages[code] = s
	}

	for code, o := range overrides {
		code = normalize(code)
		base, ok := languages[code]
		if !ok {
			base = builtin[DefaultLanguage]
		}
		languages[code] = Strings{
			Action:  pick(o.Action, base.Action),
			None:    pick(o.None, base.None),
			Success: pick(o.Success, base.Success),
		}
	}

	return &Catalog{languages: languages}
}

// Lookup returns the strings for code, or English when the code is unknown.
func (c *Catalog) Lookup(code string) Strings {
	if s, ok := c.languages[normalize(code)]; ok {
		return s
	}
	return c.languages[DefaultLanguage]
}

func (c *Catalog) Has(code string) bool {
	_, ok := c.languages[normalize(code)]
	return ok
}

func (c *Catalog) Languages() []string {
	codes := make([]string, 0, len(c.languages))
	for code := range c.languages {
		codes = append(codes, code)
	}
	return codes
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
