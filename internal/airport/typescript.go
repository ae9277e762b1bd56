package airport

import (
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
)

var tsTemplate = template.Must(template.New("airports.ts").Parse(`
// this file is generated automatically with ` + "`icao-airports filter`" + `
export const ALL = ` + "`{{.}}`"))

// templateEscaper keeps backslashes and substitutions literal inside a template literal.
var templateEscaper = strings.NewReplacer(`\`, `\\`, "${", `\${`)

// RenderTypeScript embeds registry CSV text in a TypeScript string constant. The CSV
// must not contain backticks; CleanName guarantees that for names.
func RenderTypeScript(csvText string) (string, error) {
	if strings.Contains(csvText, "`") {
		return "", eris.New("airport: csv text contains a backtick")
	}
	var sb strings.Builder
	if err := tsTemplate.Execute(&sb, templateEscaper.Replace(csvText)); err != nil {
		return "", eris.Wrap(err, "airport: render typescript")
	}
	return sb.String(), nil
}
