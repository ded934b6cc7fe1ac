package errors

import (
	"bytes"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale every code has a message in.
const BaseLocale = "en-US"

// Message templates render with the error metadata.
var messages = map[language.Tag]map[Code]string{
	language.AmericanEnglish: {
		CodeUnknown:                "Something went wrong.",
		CodeInvalidOptions:         "Invalid options: {{.Reason}}.",
		CodeInvalidValue:           "The value must be a positive finite number.",
		CodeInvalidCatalog:         "The unit catalog is invalid: {{.Reason}}.",
		CodeInvalidFilter:          "The history filter could not be parsed.",
		CodeInvalidPage:            "The page token is invalid.",
		CodeNoQuantity:             "No quantity was found in the text.",
		CodeUnknownUnit:            "I don't know that unit.",
		CodeDimensionless:          "That quantity has no units left to obfuscate.",
		CodeNoDecomposition:        "No unit combination covers {{.Dims}}.",
		CodeExponentOutOfRange:     "The units ended up raised too high; try fewer loops.",
		CodeMantissaOutOfRange:     "The number ended up too large or too small to print; set value order bounds.",
		CodeToleranceUnsatisfiable: "No prefix combination kept the number in range.",
		CodeReplyTooLong:           "The reply would be too long to post.",
		CodeNotFound:               "No recorded call has id {{.ID}}.",
		CodeHistoryDisabled:        "History is not enabled.",
		CodeStorageFailure:         "The history store failed.",
	},
	language.BrazilianPortuguese: {
		CodeUnknown:                "Algo deu errado.",
		CodeInvalidOptions:         "Opções inválidas: {{.Reason}}.",
		CodeInvalidValue:           "O valor deve ser um número positivo e finito.",
		CodeInvalidCatalog:         "O catálogo de unidades é inválido: {{.Reason}}.",
		CodeInvalidFilter:          "Não foi possível interpretar o filtro do histórico.",
		CodeInvalidPage:            "O token de página é inválido.",
		CodeNoQuantity:             "Nenhuma grandeza foi encontrada no texto.",
		CodeUnknownUnit:            "Não conheço essa unidade.",
		CodeDimensionless:          "Essa grandeza não tem unidades para ofuscar.",
		CodeNoDecomposition:        "Nenhuma combinação de unidades cobre {{.Dims}}.",
		CodeExponentOutOfRange:     "As unidades ficaram com expoentes altos demais; tente menos iterações.",
		CodeMantissaOutOfRange:     "O número ficou grande ou pequeno demais para imprimir; defina limites de ordem.",
		CodeToleranceUnsatisfiable: "Nenhuma combinação de prefixos manteve o número no intervalo.",
		CodeReplyTooLong:           "A resposta ficaria longa demais para publicar.",
		CodeNotFound:               "Nenhuma chamada registrada tem o id {{.ID}}.",
		CodeHistoryDisabled:        "O histórico não está habilitado.",
		CodeStorageFailure:         "O armazenamento do histórico falhou.",
	},
}

var (
	supported = []language.Tag{language.AmericanEnglish, language.BrazilianPortuguese}
	matcher   = language.NewMatcher(supported)
	builder   = newBuilder()
)

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for tag, byCode := range messages {
		for code, msg := range byCode {
			if err := b.SetString(tag, string(code), msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Locales returns the supported locale tags.
func Locales() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Localize renders the user-facing message for e in the closest supported
// locale. Unknown codes render as the code itself.
func (e *Error) Localize(locale string) string {
	return Format(locale, e.Code, e.Metadata)
}

// Format renders the message for code in locale with metadata.
func Format(locale string, code Code, metadata map[string]string) string {
	if locale == "" {
		locale = BaseLocale
	}
	_, index, _ := matcher.Match(language.Make(locale))
	p := message.NewPrinter(supported[index], message.Catalog(builder))

	tmpl := p.Sprintf(string(code))
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
