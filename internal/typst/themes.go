package typst

import (
	"errors"
	"os"

	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/typst/syntax"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

// ExtractThemes reads the notebook's main file and returns the source text of
// every theme argument passed to notebook.with in a top-level show rule.
func ExtractThemes(path string, log *logger.Logger) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewFileError(apperrors.OpRead, path, err)
	}

	root, err := syntax.Parse(string(data))
	if err != nil {
		line := 0
		var syntaxErr *syntax.Error
		if errors.As(err, &syntaxErr) {
			line = syntaxErr.Line
		}
		return nil, apperrors.NewParseError(path, line, err)
	}

	for _, problem := range root.Errors {
		log.Debug("syntax problem in main file", "path", path, "line", problem.Line, "problem", problem.Message)
	}

	themes := NotebookThemes(root)
	log.Debug("theme candidates found", "path", path, "candidates", themes)
	return themes, nil
}

// NotebookThemes collects the theme arguments of `#show: notebook.<f>(...)`
// rules directly in root's markup.
func NotebookThemes(root *syntax.Markup) []string {
	if root == nil {
		return nil
	}

	var themes []string
	for _, rule := range syntax.Filter[*syntax.ShowRule](root.Exprs) {
		call, ok := rule.Transform.(*syntax.FuncCall)
		if !ok || call.Args == nil {
			continue
		}
		access, ok := call.Callee.(*syntax.FieldAccess)
		if !ok {
			continue
		}
		target, ok := access.Target.(*syntax.Ident)
		if !ok || target.Name != "notebook" {
			continue
		}
		for _, arg := range syntax.Filter[*syntax.NamedArg](call.Args.Items) {
			if arg.Name == nil || arg.Name.Name != "theme" || arg.Value == nil {
				continue
			}
			themes = append(themes, arg.Value.Text())
		}
	}
	return themes
}
